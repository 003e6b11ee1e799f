// Package base provides the medium independent part of the stream transports
// (TCP, Unix sockets). It serves as a base layer that can be extended with
// protocol-specific connectors.
//
// Key Components:
//
//   - IClientConnector: Interface for protocol-specific dialing and socket tuning.
//
//   - clientTransport: Single connection implementation of
//     transport.IStreamClientTransport. It applies the configured timeout as
//     deadline to every write and read.
//
// Error Handling:
//
//	Dial failures are reported as HostNotFound (unresolvable host, missing
//	socket file) or ConnectionRefused. Write failures are SendErrors, read
//	failures ReceiveErrors; the end of the stream is passed on as io.EOF.
//	Write and Read before Connect fail with InvalidOperation.
//
// Thread Safety:
//
//	Connect and Close are thread-safe. Close may interrupt a blocked Write or
//	Read from another goroutine. Concurrent writes (or reads) must be
//	serialized by the caller.
package base
