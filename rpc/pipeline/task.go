package pipeline

import (
	"sync/atomic"
	"time"

	"github.com/ValentinKolb/dTT/rpc/protocol"
)

// task states
const (
	taskQueued int32 = iota
	taskInFlight
	taskCanceled
	taskDone
)

// result is the outcome of a task
type result struct {
	resp *protocol.Response
	err  error
}

// task is one submitted command waiting in the queue or on the wire
type task struct {
	cmd      protocol.Command
	frame    protocol.Frame
	state    atomic.Int32
	done     chan result // buffered, receives exactly one result unless canceled
	enqueued time.Time
}

func newTask(cmd protocol.Command, frame protocol.Frame) *task {
	return &task{
		cmd:      cmd,
		frame:    frame,
		done:     make(chan result, 1),
		enqueued: time.Now(),
	}
}

// start moves a queued task on the wire. It fails for canceled tasks.
func (t *task) start() bool {
	return t.state.CompareAndSwap(taskQueued, taskInFlight)
}

// finish delivers the result. It reports false if the submitter gave up on the
// task in the meantime and the result is dropped.
func (t *task) finish(resp *protocol.Response, err error) bool {
	if !t.state.CompareAndSwap(taskInFlight, taskDone) && !t.state.CompareAndSwap(taskQueued, taskDone) {
		return false
	}
	t.done <- result{resp: resp, err: err}
	return true
}

// cancel abandons the task. A queued task is never sent, the response of an
// in-flight task is discarded. Reports false if the result is already available.
func (t *task) cancel() bool {
	return t.state.CompareAndSwap(taskQueued, taskCanceled) || t.state.CompareAndSwap(taskInFlight, taskCanceled)
}
