package common

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
)

const (
	// DefaultMaxResponseSize limits a single variable length response field (64 MiB)
	DefaultMaxResponseSize = 64 * 1024 * 1024
)

// --------------------------------------------------------------------------
// RPC client configuration struct
// --------------------------------------------------------------------------

// SocketConf holds socket buffer settings shared by all stream transports
type SocketConf struct {
	WriteBufferSize int
	ReadBufferSize  int
}

// TCPConf holds settings only applied to TCP connections
type TCPConf struct {
	TCPNoDelay      bool
	TCPKeepAliveSec int
	TCPLingerSec    int
}

// ClientTransportConfig configures the connection to a single database server
type ClientTransportConfig struct {
	// Endpoint is the address of the server (host:port for tcp, a path for unix)
	Endpoint string
	// MaxResponseSize limits the size of a single variable length field in a response.
	// Zero selects DefaultMaxResponseSize.
	MaxResponseSize int
	SocketConf
	TCPConf
}

// ClientConfig is the configuration of one client connection
type ClientConfig struct {
	TimeoutSecond int
	Transport     ClientTransportConfig
}

// MaxResponseSizeOrDefault returns the configured response limit or the default
func (c *ClientConfig) MaxResponseSizeOrDefault() int {
	if c.Transport.MaxResponseSize > 0 {
		return c.Transport.MaxResponseSize
	}
	return DefaultMaxResponseSize
}

// String returns a formatted string representation of the client configuration
func (c *ClientConfig) String() string {
	var sb strings.Builder

	// Create helper functions for consistent formatting
	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	// General Client Settings
	addSection("Client Configuration")
	addField("Endpoint", c.Transport.Endpoint)
	addField("Timeout", fmt.Sprintf("%d sec", c.TimeoutSecond))
	addField("Max Response Size", humanize.IBytes(uint64(c.MaxResponseSizeOrDefault())))

	// Socket
	addSection("Socket")
	addField("Write Buffer", humanize.IBytes(uint64(max(c.Transport.WriteBufferSize, 0))))
	addField("Read Buffer", humanize.IBytes(uint64(max(c.Transport.ReadBufferSize, 0))))
	addField("TCP NoDelay", fmt.Sprintf("%t", c.Transport.TCPNoDelay))
	addField("TCP KeepAlive", fmt.Sprintf("%d sec", c.Transport.TCPKeepAliveSec))
	addField("TCP Linger", fmt.Sprintf("%d sec", c.Transport.TCPLingerSec))

	return sb.String()
}
