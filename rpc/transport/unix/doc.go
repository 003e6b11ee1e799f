// Package unix implements the Unix domain socket connector of the stream
// transport. The endpoint is the path of the socket file; a missing file is
// reported as HostNotFound.
package unix
