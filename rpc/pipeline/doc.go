/*
Package pipeline implements the command dispatcher of a database connection.

Callers submit encoded frames together with their command descriptor. The
pipeline queues them in a lock-free FIFO and a single dispatch goroutine sends
them one at a time: write the frame, read exactly one response of the
command's shape, deliver it, take the next task. Since the server answers in
request order and only one request is ever outstanding, a response always
belongs to the oldest unanswered task.

Cancellation:

  - a task canceled while queued is skipped and never written
  - a task canceled while on the wire still has its response read from the
    stream (to keep the stream in sync); the response is discarded

Failures:

A failed write or read (including a truncated or malformed response) leaves
the stream unusable. The pipeline closes the transport and fails the current
task with a SendError or ReceiveError; all later tasks fail with
InvalidOperation ("no active connection") instead of waiting forever.

Metrics:

Request counts, error counts per code and latency histograms per command are
kept in the VictoriaMetrics set Metrics:

	dtt_requests_total{command="get"}
	dtt_request_errors_total{command="get",code="7"}
	dtt_request_duration_seconds{command="get"}
	dtt_requests_canceled_total
*/
package pipeline
