// Package transport defines the byte stream abstraction the database clients
// talk through. A transport only moves bytes: it connects to one endpoint,
// writes complete request frames and hands response bytes to the reader in the
// order they arrive.
//
// Key Components:
//
//   - IStreamClientTransport: Interface for a single ordered connection that
//     supports Connect, Write, Read and Close.
//
// Implementations:
//
//   - base: Connector based implementation over net.Conn with deadlines and
//     classification of network errors into the common error codes.
//
//   - tcp, unix: Connectors for TCP and Unix domain sockets.
package transport
