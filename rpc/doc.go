// Package rpc provides a client for Tokyo Tyrant database servers speaking
// the binary protocol. Requests are pipelined over a single stream
// connection and answered in submission order.
//
// The package is organized into several subpackages:
//
//   - common: Error codes, option constants, configuration structures and logging.
//
//   - protocol: The binary wire format. Encoders build request frames for
//     every command, the decoder reads the response shape each command expects.
//
//   - query: A builder for the clauses of table searches.
//
//   - transport: Stream transports (TCP, Unix sockets) carrying the frames.
//
//   - pipeline: Queues requests from many goroutines and dispatches them one
//     at a time, matching each response to its request.
//
//   - client: Typed clients for hash and table databases.
package rpc
