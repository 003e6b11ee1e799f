package base

import (
	"net"
	"sync"
	"time"

	"github.com/ValentinKolb/dTT/rpc/common"
	"github.com/ValentinKolb/dTT/rpc/transport"
	"github.com/lni/dragonboat/v4/logger"
)

var Logger = logger.GetLogger("transport/rpc")

// -----------------------------------------------------------
// Interface Definitions for dependency injection
// -----------------------------------------------------------

// IClientConnector defines the interface for transport-specific connection operations
type IClientConnector interface {
	// Connect establishes a single connection to the endpoint.
	// A zero timeout waits as long as the operating system allows.
	Connect(endpoint string, timeout time.Duration) (net.Conn, error)

	// GetName returns the name of the transport type (e.g., "unix", "tcp")
	GetName() string

	// UpgradeConnection applies protocol-specific settings to an established connection
	UpgradeConnection(conn net.Conn, config common.ClientConfig) error
}

// -----------------------------------------------------------
// Helper Types
// -----------------------------------------------------------

// clientTransport implements a single stream connection independent of the
// specific transport medium (unix, tcp, etc.)
type clientTransport struct {
	connector IClientConnector
	config    common.ClientConfig
	conn      net.Conn
	connMu    sync.Mutex // Protects the connection itself
}

// -----------------------------------------------------------
// Transport Factory Method (used for tcp, unix, etc.)
// -----------------------------------------------------------

// NewBaseClientTransport creates a new base client transport with the specified connector
func NewBaseClientTransport(connector IClientConnector) transport.IStreamClientTransport {
	return &clientTransport{
		connector: connector,
	}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IStreamClientTransport)
// --------------------------------------------------------------------------

func (t *clientTransport) Connect(config common.ClientConfig) error {
	endpoint := config.Transport.Endpoint
	if endpoint == "" {
		return common.NewError(common.CodeInvalidOperation, "no endpoint provided")
	}

	t.connMu.Lock()
	defer t.connMu.Unlock()

	// Close an existing connection
	if t.conn != nil {
		_ = t.conn.Close()
		t.conn = nil
	}
	t.config = config

	conn, err := t.connector.Connect(endpoint, t.timeout())
	if err != nil {
		Logger.Warningf("Failed to connect to %s: %v", endpoint, err)
		return classifyDialError(err, endpoint)
	}

	// Upgrade the connection with protocol-specific settings
	if err := t.connector.UpgradeConnection(conn, config); err != nil {
		_ = conn.Close()
		return common.WrapError(common.CodeInvalidOperation, err, "failed to upgrade connection to "+endpoint)
	}

	t.conn = conn
	Logger.Infof("Connected to %s using %s transport", endpoint, t.connector.GetName())
	return nil
}

func (t *clientTransport) Write(p []byte) error {
	conn := t.current()
	if conn == nil {
		return errNotConnected
	}

	if timeout := t.timeout(); timeout > 0 {
		_ = conn.SetWriteDeadline(time.Now().Add(timeout))
	}

	// net.Conn writes the complete buffer unless an error occurs
	if _, err := conn.Write(p); err != nil {
		return common.WrapError(common.CodeSendError, err, "failed to write to "+t.config.Transport.Endpoint)
	}
	return nil
}

func (t *clientTransport) Read(p []byte) (int, error) {
	conn := t.current()
	if conn == nil {
		return 0, errNotConnected
	}

	if timeout := t.timeout(); timeout > 0 {
		_ = conn.SetReadDeadline(time.Now().Add(timeout))
	}

	n, err := conn.Read(p)
	if err != nil {
		return n, classifyReadError(err, t.config.Transport.Endpoint)
	}
	return n, nil
}

func (t *clientTransport) Close() error {
	t.connMu.Lock()
	defer t.connMu.Unlock()

	if t.conn == nil {
		return nil
	}
	err := t.conn.Close()
	t.conn = nil
	if err != nil {
		Logger.Debugf("Closing connection to %s: %v", t.config.Transport.Endpoint, err)
	}
	return nil
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// current returns the active connection or nil
func (t *clientTransport) current() net.Conn {
	t.connMu.Lock()
	defer t.connMu.Unlock()
	return t.conn
}

// timeout returns the configured I/O timeout (zero means none)
func (t *clientTransport) timeout() time.Duration {
	if t.config.TimeoutSecond <= 0 {
		return 0
	}
	return time.Duration(t.config.TimeoutSecond) * time.Second
}
