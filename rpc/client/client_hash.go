package client

import (
	"context"

	"github.com/ValentinKolb/dTT/rpc/common"
	"github.com/ValentinKolb/dTT/rpc/protocol"
	"github.com/ValentinKolb/dTT/rpc/transport"
)

// Hash is the client of a plain key/value database. All methods are safe for
// concurrent use; commands are sent over the single connection in the order
// they are called.
type Hash struct {
	database
}

// NewHash connects the transport and creates a Hash client on it
func NewHash(config common.ClientConfig, t transport.IStreamClientTransport) (*Hash, error) {
	adapter, err := newAdapter(config, t)
	if err != nil {
		return nil, err
	}
	return &Hash{database{adapter}}, nil
}

// --------------------------------------------------------------------------
// Store records
// --------------------------------------------------------------------------

// Put stores a record, an existing record is overwritten
func (h *Hash) Put(ctx context.Context, key string, value []byte) error {
	return h.put(ctx, protocol.CmdPut, key, value)
}

// PutKeep stores a new record. If the key exists the call fails with ExistingRecord.
func (h *Hash) PutKeep(ctx context.Context, key string, value []byte) error {
	return h.put(ctx, protocol.CmdPutKeep, key, value)
}

// PutCat appends value to the end of an existing record (or creates it)
func (h *Hash) PutCat(ctx context.Context, key string, value []byte) error {
	return h.put(ctx, protocol.CmdPutCat, key, value)
}

// PutShl appends value and cuts the record from the left to width bytes
func (h *Hash) PutShl(ctx context.Context, key string, value []byte, width int) error {
	frame, err := protocol.EncodePutShl(key, value, width)
	if err != nil {
		return err
	}
	_, err = h.invoke(ctx, protocol.CmdPutShl, frame)
	return err
}

// PutNR stores a record without waiting for the server to answer.
// Failures of the server are not reported.
func (h *Hash) PutNR(ctx context.Context, key string, value []byte) error {
	return h.put(ctx, protocol.CmdPutNR, key, value)
}

// Out removes a record. A missing record fails with NoRecordFound.
func (h *Hash) Out(ctx context.Context, key string) error {
	frame, err := protocol.EncodeOut(key)
	if err != nil {
		return err
	}
	_, err = h.invoke(ctx, protocol.CmdOut, frame)
	return err
}

// --------------------------------------------------------------------------
// Retrieve records
// --------------------------------------------------------------------------

// Get retrieves the value of a record. A missing record fails with NoRecordFound.
func (h *Hash) Get(ctx context.Context, key string) ([]byte, error) {
	frame, err := protocol.EncodeGet(key)
	if err != nil {
		return nil, err
	}
	resp, err := h.invoke(ctx, protocol.CmdGet, frame)
	if err != nil {
		return nil, err
	}
	return resp.Value, nil
}

// MGet retrieves the records of all given keys that exist
func (h *Hash) MGet(ctx context.Context, keys []string) ([]protocol.Record, error) {
	frame, err := protocol.EncodeMGet(keys)
	if err != nil {
		return nil, err
	}
	resp, err := h.invoke(ctx, protocol.CmdMGet, frame)
	if err != nil {
		return nil, err
	}
	return resp.Records, nil
}

// --------------------------------------------------------------------------
// Counters and extensions
// --------------------------------------------------------------------------

// AddInt adds num to the integer stored in key and returns the sum
func (h *Hash) AddInt(ctx context.Context, key string, num int) (int, error) {
	frame, err := protocol.EncodeAddInt(key, num)
	if err != nil {
		return 0, err
	}
	resp, err := h.invoke(ctx, protocol.CmdAddInt, frame)
	if err != nil {
		return 0, err
	}
	return int(resp.Int), nil
}

// AddDouble adds num to the real number stored in key and returns the sum
func (h *Hash) AddDouble(ctx context.Context, key string, num float64) (float64, error) {
	frame, err := protocol.EncodeAddDouble(key, num)
	if err != nil {
		return 0, err
	}
	resp, err := h.invoke(ctx, protocol.CmdAddDouble, frame)
	if err != nil {
		return 0, err
	}
	return resp.Double.Float64(), nil
}

// Ext calls the script extension function name on key and value
func (h *Hash) Ext(ctx context.Context, name string, opts common.Opt, key string, value []byte) ([]byte, error) {
	frame, err := protocol.EncodeExt(name, opts, key, value)
	if err != nil {
		return nil, err
	}
	resp, err := h.invoke(ctx, protocol.CmdExt, frame)
	if err != nil {
		return nil, err
	}
	return resp.Value, nil
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

func (h *Hash) put(ctx context.Context, cmd protocol.Command, key string, value []byte) error {
	frame, err := protocol.EncodePut(cmd, key, value)
	if err != nil {
		return err
	}
	_, err = h.invoke(ctx, cmd, frame)
	return err
}
