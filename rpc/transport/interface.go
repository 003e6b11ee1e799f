package transport

import (
	"github.com/ValentinKolb/dTT/rpc/common"
)

// --------------------------------------------------------------------------
// Client Transport
// --------------------------------------------------------------------------

// IStreamClientTransport is a single ordered byte stream to a database server.
// It neither frames nor interprets the bytes; request framing and response
// matching are left to the caller.
//
// Write and Read are not safe for concurrent use with themselves; a caller must
// serialize writes and reads (the pipeline has a single writer/reader).
// Close may be called at any time to abort a blocked Write or Read.
type IStreamClientTransport interface {
	// Connect establishes the connection with the given configuration
	Connect(config common.ClientConfig) error
	// Write sends the complete buffer or fails with a SendError
	Write(p []byte) error
	// Read reads available response bytes (io.Reader semantics). Failures
	// other than the end of the stream are ReceiveErrors.
	Read(p []byte) (int, error)
	// Close closes the connection. Calling Close more than once is allowed.
	Close() error
}
