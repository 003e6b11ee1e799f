package client

import (
	"context"

	"github.com/ValentinKolb/dTT/rpc/common"
	"github.com/ValentinKolb/dTT/rpc/protocol"
)

// database implements the commands shared by the plain and the tabular database
type database struct {
	*rpcClientAdapter
}

// --------------------------------------------------------------------------
// Iteration and key lookup
// --------------------------------------------------------------------------

// VSiz returns the size of the value of key
func (d *database) VSiz(ctx context.Context, key string) (int, error) {
	frame, err := protocol.EncodeVSiz(key)
	if err != nil {
		return 0, err
	}
	resp, err := d.invoke(ctx, protocol.CmdVSiz, frame)
	if err != nil {
		return 0, err
	}
	return int(resp.Int), nil
}

// IterInit initializes the key iterator of the server
func (d *database) IterInit(ctx context.Context) error {
	return d.bare(ctx, protocol.CmdIterInit)
}

// IterNext returns the next key of the iterator. The end of the iteration is
// reported as NoRecordFound.
func (d *database) IterNext(ctx context.Context) (string, error) {
	frame, err := protocol.EncodeBare(protocol.CmdIterNext)
	if err != nil {
		return "", err
	}
	resp, err := d.invoke(ctx, protocol.CmdIterNext, frame)
	if err != nil {
		return "", err
	}
	return string(resp.Value), nil
}

// FwmKeys returns up to max keys starting with prefix (a negative max returns all)
func (d *database) FwmKeys(ctx context.Context, prefix string, max int) ([]string, error) {
	frame, err := protocol.EncodeFwmKeys(prefix, max)
	if err != nil {
		return nil, err
	}
	resp, err := d.invoke(ctx, protocol.CmdFwmKeys, frame)
	if err != nil {
		return nil, err
	}
	return resp.Strings(), nil
}

// --------------------------------------------------------------------------
// Database management
// --------------------------------------------------------------------------

// Sync writes updated contents to the device
func (d *database) Sync(ctx context.Context) error {
	return d.bare(ctx, protocol.CmdSync)
}

// Optimize rebuilds the storage with the given tuning parameters (may be empty)
func (d *database) Optimize(ctx context.Context, params string) error {
	frame, err := protocol.EncodeOptimize(params)
	if err != nil {
		return err
	}
	_, err = d.invoke(ctx, protocol.CmdOptimize, frame)
	return err
}

// Vanish removes all records
func (d *database) Vanish(ctx context.Context) error {
	return d.bare(ctx, protocol.CmdVanish)
}

// Copy copies the database file to path on the server
func (d *database) Copy(ctx context.Context, path string) error {
	frame, err := protocol.EncodeCopy(path)
	if err != nil {
		return err
	}
	_, err = d.invoke(ctx, protocol.CmdCopy, frame)
	return err
}

// Restore replays the update log at path starting at tsMicro (microseconds)
func (d *database) Restore(ctx context.Context, path string, tsMicro uint64, opts common.Opt) error {
	frame, err := protocol.EncodeRestore(path, tsMicro, opts)
	if err != nil {
		return err
	}
	_, err = d.invoke(ctx, protocol.CmdRestore, frame)
	return err
}

// SetMst sets the replication master. An empty host removes it.
func (d *database) SetMst(ctx context.Context, host string, port int, tsMicro uint64, opts common.Opt) error {
	frame, err := protocol.EncodeSetMst(host, port, tsMicro, opts)
	if err != nil {
		return err
	}
	_, err = d.invoke(ctx, protocol.CmdSetMst, frame)
	return err
}

// --------------------------------------------------------------------------
// Database information
// --------------------------------------------------------------------------

// RNum returns the number of records
func (d *database) RNum(ctx context.Context) (uint64, error) {
	return d.counter(ctx, protocol.CmdRNum)
}

// Size returns the size of the database in bytes
func (d *database) Size(ctx context.Context) (uint64, error) {
	return d.counter(ctx, protocol.CmdSize)
}

// Stat returns the status text of the server
func (d *database) Stat(ctx context.Context) (string, error) {
	frame, err := protocol.EncodeBare(protocol.CmdStat)
	if err != nil {
		return "", err
	}
	resp, err := d.invoke(ctx, protocol.CmdStat, frame)
	if err != nil {
		return "", err
	}
	return string(resp.Value), nil
}

// StatMap returns the status of the server as name/value pairs
func (d *database) StatMap(ctx context.Context) (map[string]string, error) {
	text, err := d.Stat(ctx)
	if err != nil {
		return nil, err
	}
	return parseStat(text), nil
}

// --------------------------------------------------------------------------
// Misc
// --------------------------------------------------------------------------

// Misc calls the server function name with args and returns its result list.
// A trailing hint is removed from the list.
func (d *database) Misc(ctx context.Context, name string, opts common.Opt, args ...[]byte) ([][]byte, error) {
	frame, err := protocol.EncodeMisc(name, opts, args)
	if err != nil {
		return nil, err
	}
	resp, err := d.invoke(ctx, protocol.CmdMisc, frame)
	if err != nil {
		return nil, err
	}
	return resp.List, nil
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// bare runs a command without arguments and without result
func (d *database) bare(ctx context.Context, cmd protocol.Command) error {
	frame, err := protocol.EncodeBare(cmd)
	if err != nil {
		return err
	}
	_, err = d.invoke(ctx, cmd, frame)
	return err
}

// counter runs a command answered with a 64-bit counter
func (d *database) counter(ctx context.Context, cmd protocol.Command) (uint64, error) {
	frame, err := protocol.EncodeBare(cmd)
	if err != nil {
		return 0, err
	}
	resp, err := d.invoke(ctx, cmd, frame)
	if err != nil {
		return 0, err
	}
	return resp.Count, nil
}
