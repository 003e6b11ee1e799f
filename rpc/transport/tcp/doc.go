// Package tcp implements the TCP connector of the stream transport. The
// connector dials host:port endpoints and applies the TCPConf settings
// (no delay, keep-alive, linger) and socket buffer sizes of the client
// configuration.
//
// The database server listens on port 1978 by default.
package tcp
