package client

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/ValentinKolb/dTT/rpc/common"
	"github.com/ValentinKolb/dTT/rpc/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHash(t *testing.T) (*Hash, *fakeServer) {
	t.Helper()
	srv := newFakeServer()
	h, err := NewHash(common.ClientConfig{}, srv)
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.Close() })
	return h, srv
}

func TestNewHashWithoutTransport(t *testing.T) {
	_, err := NewHash(common.ClientConfig{}, nil)
	assert.True(t, errors.Is(err, common.ErrInvalid))
}

func TestHashPutGet(t *testing.T) {
	h, _ := newTestHash(t)
	ctx := context.Background()

	require.NoError(t, h.Put(ctx, "foo", []byte("bar")))
	value, err := h.Get(ctx, "foo")
	require.NoError(t, err)
	assert.Equal(t, []byte("bar"), value)

	_, err = h.Get(ctx, "missing")
	assert.True(t, errors.Is(err, common.ErrNoRecord), "got %v", err)

	size, err := h.VSiz(ctx, "foo")
	require.NoError(t, err)
	assert.Equal(t, 3, size)
}

func TestHashPutVariants(t *testing.T) {
	h, _ := newTestHash(t)
	ctx := context.Background()

	require.NoError(t, h.PutKeep(ctx, "k", []byte("a")))
	err := h.PutKeep(ctx, "k", []byte("b"))
	assert.True(t, errors.Is(err, common.ErrKeep), "got %v", err)

	require.NoError(t, h.PutCat(ctx, "k", []byte("bc")))
	value, err := h.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), value)

	require.NoError(t, h.PutNR(ctx, "nr", []byte("x")))
	value, err = h.Get(ctx, "nr")
	require.NoError(t, err)
	assert.Equal(t, []byte("x"), value)

	require.NoError(t, h.Out(ctx, "k"))
	assert.True(t, errors.Is(h.Out(ctx, "k"), common.ErrNoRecord))
}

func TestHashMGet(t *testing.T) {
	h, _ := newTestHash(t)
	ctx := context.Background()

	require.NoError(t, h.Put(ctx, "a", []byte("1")))
	require.NoError(t, h.Put(ctx, "b", []byte("x\x00y")))

	keys := []string{"a", "missing", "b"}
	records, err := h.MGet(ctx, keys)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "a", records[0].Key)
	assert.Equal(t, []byte("1"), records[0].Value)
	assert.Equal(t, protocol.MultiValue{"x", "y"}, records[1].Values)
	assert.Equal(t, []string{"a", "missing", "b"}, keys, "keys must not be consumed")

	records, err = h.MGet(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestHashCounters(t *testing.T) {
	h, _ := newTestHash(t)
	ctx := context.Background()

	sum, err := h.AddInt(ctx, "n", 5)
	require.NoError(t, err)
	assert.Equal(t, 5, sum)
	sum, err = h.AddInt(ctx, "n", -7)
	require.NoError(t, err)
	assert.Equal(t, -2, sum)

	total, err := h.AddDouble(ctx, "d", 2.5)
	require.NoError(t, err)
	assert.Equal(t, 2.5, total)
	total, err = h.AddDouble(ctx, "d", 0.25)
	require.NoError(t, err)
	assert.Equal(t, 2.75, total)
}

func TestHashIteration(t *testing.T) {
	h, _ := newTestHash(t)
	ctx := context.Background()

	for _, key := range []string{"b", "a", "c"} {
		require.NoError(t, h.Put(ctx, key, []byte(key)))
	}

	require.NoError(t, h.IterInit(ctx))
	var keys []string
	for {
		key, err := h.IterNext(ctx)
		if errors.Is(err, common.ErrNoRecord) {
			break
		}
		require.NoError(t, err)
		keys = append(keys, key)
	}
	assert.Equal(t, []string{"a", "b", "c"}, keys)

	prefixed, err := h.FwmKeys(ctx, "", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, prefixed)

	prefixed, err = h.FwmKeys(ctx, "c", -1)
	require.NoError(t, err)
	assert.Equal(t, []string{"c"}, prefixed)
}

func TestHashDatabaseInfo(t *testing.T) {
	h, _ := newTestHash(t)
	ctx := context.Background()

	require.NoError(t, h.Put(ctx, "a", nil))
	require.NoError(t, h.Put(ctx, "b", nil))
	require.NoError(t, h.Sync(ctx))

	rnum, err := h.RNum(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), rnum)

	size, err := h.Size(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(200), size)

	stats, err := h.StatMap(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"version": "1.1.41", "rnum": "2", "type": "hash"}, stats)

	require.NoError(t, h.Vanish(ctx))
	rnum, err = h.RNum(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), rnum)
}

func TestHashMisc(t *testing.T) {
	h, _ := newTestHash(t)

	list, err := h.Misc(context.Background(), "echo", common.MONOULOG, []byte("a"), []byte("b"))
	require.NoError(t, err)
	assert.Equal(t, [][]byte{[]byte("a"), []byte("b")}, list, "hint is stripped")

	_, err = h.Misc(context.Background(), "unknown", 0)
	assert.True(t, errors.Is(err, common.ErrMisc), "got %v", err)
}

func TestHashUnsupportedCommand(t *testing.T) {
	h, _ := newTestHash(t)

	// the fake answers unknown opcodes with status 9
	err := h.Copy(context.Background(), "/tmp/backup")
	assert.True(t, errors.Is(err, common.ErrMisc), "got %v", err)
}

func TestHashInvalidArgumentsWriteNothing(t *testing.T) {
	h, srv := newTestHash(t)
	ctx := context.Background()

	tests := []struct {
		name string
		call func() error
	}{
		{"addint overflow", func() error { _, err := h.AddInt(ctx, "n", math.MaxInt32+1); return err }},
		{"adddouble NaN", func() error { _, err := h.AddDouble(ctx, "d", math.NaN()); return err }},
		{"ext without name", func() error { _, err := h.Ext(ctx, "", 0, "k", nil); return err }},
		{"copy without path", func() error { return h.Copy(ctx, "") }},
		{"restore without path", func() error { return h.Restore(ctx, "", 0, 0) }},
		{"setmst invalid port", func() error { return h.SetMst(ctx, "host", -1, 0, 0) }},
		{"misc without name", func() error { _, err := h.Misc(ctx, "", 0); return err }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			assert.True(t, errors.Is(err, common.ErrInvalid), "got %v", err)
		})
	}
	assert.Equal(t, 0, srv.bytesWritten())
}

func TestHashClosed(t *testing.T) {
	h, _ := newTestHash(t)
	require.NoError(t, h.Close())

	err := h.Put(context.Background(), "k", []byte("v"))
	assert.True(t, errors.Is(err, common.ErrInvalid), "got %v", err)
}
