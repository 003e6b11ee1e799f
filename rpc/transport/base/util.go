package base

import (
	"io"
	"net"
	"os"
	"syscall"

	"github.com/ValentinKolb/dTT/rpc/common"
	"github.com/pkg/errors"
)

// errNotConnected is returned by Write and Read before Connect or after Close
var errNotConnected = common.NewError(common.CodeInvalidOperation, "no active connection")

// classifyDialError maps a failed dial onto the common error codes:
// unresolvable hosts and missing socket files become HostNotFound, everything
// else ConnectionRefused
func classifyDialError(err error, endpoint string) error {
	var dnsErr *net.DNSError
	switch {
	case errors.As(err, &dnsErr):
		return common.WrapError(common.CodeHostNotFound, err, endpoint)
	case errors.Is(err, os.ErrNotExist), errors.Is(err, syscall.ENOENT):
		return common.WrapError(common.CodeHostNotFound, err, endpoint)
	default:
		return common.WrapError(common.CodeConnectionRefused, err, endpoint)
	}
}

// classifyReadError keeps io.EOF intact so readers can detect the end of the
// stream and turns every other failure into a ReceiveError
func classifyReadError(err error, endpoint string) error {
	if err == io.EOF {
		return io.EOF
	}
	return common.WrapError(common.CodeReceiveError, err, "failed to read from "+endpoint)
}
