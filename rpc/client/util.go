package client

import (
	"context"
	"strconv"
	"strings"

	"github.com/ValentinKolb/dTT/rpc/common"
	"github.com/ValentinKolb/dTT/rpc/pipeline"
	"github.com/ValentinKolb/dTT/rpc/protocol"
	"github.com/ValentinKolb/dTT/rpc/transport"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/pkg/errors"
)

var (
	Logger = logger.GetLogger("rpc")
)

// rpcClientAdapter is a struct that stores all data needed for a database client.
// Used by Hash and Table with composition pattern
type rpcClientAdapter struct {
	config    common.ClientConfig
	transport transport.IStreamClientTransport
	pipeline  *pipeline.Pipeline
}

// newAdapter connects the transport and starts the pipeline on it
func newAdapter(config common.ClientConfig, t transport.IStreamClientTransport) (*rpcClientAdapter, error) {
	if t == nil {
		return nil, common.NewError(common.CodeInvalidOperation, "no transport provided")
	}
	if err := t.Connect(config); err != nil {
		return nil, err
	}
	return &rpcClientAdapter{
		config:    config,
		transport: t,
		pipeline:  pipeline.New(t, config),
	}, nil
}

// Close fails all pending commands and closes the connection
func (a *rpcClientAdapter) Close() error {
	return a.pipeline.Close()
}

// Pending returns the number of commands waiting to be sent
func (a *rpcClientAdapter) Pending() int {
	return a.pipeline.Len()
}

// invoke is a helper function used by all client methods to run one command:
// it submits the frame and waits for the decoded response.
// Callers encode first and never invoke with a frame that failed to encode,
// so an invalid call never reaches the connection.
func (a *rpcClientAdapter) invoke(ctx context.Context, cmd protocol.Command, frame protocol.Frame) (*protocol.Response, error) {
	resp, err := a.pipeline.Submit(ctx, cmd, frame)
	if err != nil {
		Logger.Debugf("%s failed: %v", cmd, err)
		return nil, err
	}
	return resp, nil
}

// invokeMisc encodes and runs a misc call of the function belonging to cmd
func (a *rpcClientAdapter) invokeMisc(ctx context.Context, cmd protocol.Command, opts common.Opt, args [][]byte) (*protocol.Response, error) {
	frame, err := protocol.EncodeMisc(cmd.MiscName(), opts, args)
	if err != nil {
		return nil, err
	}
	return a.invoke(ctx, cmd, frame)
}

// --------------------------------------------------------------------------
// Helper functions
// --------------------------------------------------------------------------

// malformed reports a response that decoded fine but does not carry what the
// command promises
func malformed(cmd protocol.Command, format string, args ...interface{}) error {
	return common.WrapError(common.CodeReceiveError, errors.Wrapf(protocol.ErrMalformed, format, args...), cmd.String())
}

// parseStat parses the "name\tvalue\n" lines of the status text
func parseStat(text string) map[string]string {
	stats := make(map[string]string)
	for _, line := range strings.Split(text, "\n") {
		name, value, ok := strings.Cut(line, "\t")
		if !ok || name == "" {
			continue
		}
		stats[name] = value
	}
	return stats
}

// parseDecimal parses a decimal number sent as list element
func parseDecimal(cmd protocol.Command, b []byte) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(string(b)), 10, 64)
	if err != nil {
		return 0, malformed(cmd, "invalid number %q", b)
	}
	return n, nil
}
