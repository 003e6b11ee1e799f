package protocol

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/ValentinKolb/dTT/rpc/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// oneByteReader returns at most one byte per Read call to simulate a
// response arriving in many small fragments
type oneByteReader struct {
	data []byte
}

func (r *oneByteReader) Read(p []byte) (int, error) {
	if len(r.data) == 0 {
		return 0, io.EOF
	}
	if len(p) == 0 {
		return 0, nil
	}
	p[0] = r.data[0]
	r.data = r.data[1:]
	return 1, nil
}

func TestDecodeShapes(t *testing.T) {
	t.Run("ack", func(t *testing.T) {
		resp, err := Decode(CmdPut, []byte{0})
		require.NoError(t, err)
		assert.True(t, resp.OK())
		assert.NoError(t, resp.Err())
	})

	t.Run("blob", func(t *testing.T) {
		resp, err := Decode(CmdGet, cat(byte(0), be32(3), "bar"))
		require.NoError(t, err)
		assert.Equal(t, []byte("bar"), resp.Value)
	})

	t.Run("empty blob", func(t *testing.T) {
		resp, err := Decode(CmdGet, cat(byte(0), be32(0)))
		require.NoError(t, err)
		assert.Equal(t, []byte{}, resp.Value)
	})

	t.Run("counter", func(t *testing.T) {
		resp, err := Decode(CmdRNum, cat(byte(0), be32(1), be32(2)))
		require.NoError(t, err)
		assert.Equal(t, uint64(1<<32+2), resp.Count)
	})

	t.Run("int32", func(t *testing.T) {
		resp, err := Decode(CmdAddInt, cat(byte(0), []byte{0xFF, 0xFF, 0xFF, 0xFE}))
		require.NoError(t, err)
		assert.Equal(t, int32(-2), resp.Int)
	})

	t.Run("fixed point", func(t *testing.T) {
		resp, err := Decode(CmdAddDouble, cat(byte(0), be64(2), be64(5_000_000_000)))
		require.NoError(t, err)
		assert.Equal(t, FixedPoint{Integral: 2, Fractional: 5_000_000_000}, resp.Double)
		assert.Equal(t, 2.5, resp.Double.Float64())
	})

	t.Run("fixed point with leading fraction zeros", func(t *testing.T) {
		resp, err := Decode(CmdAddDouble, cat(byte(0), be64(1), be64(50_000_000)))
		require.NoError(t, err)
		assert.Equal(t, "1.005", resp.Double.String())
	})

	t.Run("records", func(t *testing.T) {
		data := cat(byte(0), be32(2),
			be32(1), be32(3), "a", "x\x00y",
			be32(1), be32(0), "b")
		resp, err := Decode(CmdMGet, data)
		require.NoError(t, err)
		require.Len(t, resp.Records, 2)
		assert.Equal(t, "a", resp.Records[0].Key)
		assert.Equal(t, []byte("x\x00y"), resp.Records[0].Value)
		assert.Equal(t, MultiValue{"x", "y"}, resp.Records[0].Values)
		assert.Equal(t, "b", resp.Records[1].Key)
		assert.Equal(t, MultiValue{}, resp.Records[1].Values)
	})

	t.Run("list", func(t *testing.T) {
		data := cat(byte(0), be32(3), be32(2), "k1", be32(0), be32(2), "k3")
		resp, err := Decode(CmdFwmKeys, data)
		require.NoError(t, err)
		assert.Equal(t, []string{"k1", "", "k3"}, resp.Strings())
		assert.Empty(t, resp.Hint)
	})
}

func TestDecodeHint(t *testing.T) {
	hint := "\x00\x00[[HINT]]\nscanning the whole table\n"

	t.Run("search strips the hint", func(t *testing.T) {
		data := cat(byte(0), be32(3), be32(2), "pk", be32(3), "pk2", be32(uint32(len(hint))), hint)
		resp, err := Decode(CmdSearch, data)
		require.NoError(t, err)
		assert.Equal(t, []string{"pk", "pk2"}, resp.Strings())
		assert.Equal(t, "[[HINT]]\nscanning the whole table\n", resp.Hint)
	})

	t.Run("count keeps the number", func(t *testing.T) {
		data := cat(byte(0), be32(2), be32(2), "42", be32(uint32(len(hint))), hint)
		resp, err := Decode(CmdSearchCount, data)
		require.NoError(t, err)
		assert.Equal(t, []string{"42"}, resp.Strings())
		assert.NotEmpty(t, resp.Hint)
	})

	t.Run("fwmkeys keeps hint like elements", func(t *testing.T) {
		data := cat(byte(0), be32(1), be32(uint32(len(hint))), hint)
		resp, err := Decode(CmdFwmKeys, data)
		require.NoError(t, err)
		assert.Len(t, resp.List, 1)
		assert.Empty(t, resp.Hint)
	})

	t.Run("genuid", func(t *testing.T) {
		data := cat(byte(0), be32(1), be32(2), "17")
		resp, err := Decode(CmdGenUID, data)
		require.NoError(t, err)
		assert.Equal(t, []byte("17"), resp.UID)
		assert.Nil(t, resp.List)
	})
}

func TestDecodeStatus(t *testing.T) {
	tests := []struct {
		name   string
		cmd    Command
		status byte
		target error
	}{
		{"get missing record", CmdGet, 1, common.ErrNoRecord},
		{"out missing record", CmdOut, 1, common.ErrNoRecord},
		{"putkeep existing record", CmdPutKeep, 1, common.ErrKeep},
		{"table putkeep existing record", CmdTablePutKeep, 1, common.ErrKeep},
		{"put failure", CmdPut, 1, common.ErrMisc},
		{"direct no record code", CmdGet, 7, common.ErrNoRecord},
		{"direct existing record code", CmdPut, 6, common.ErrKeep},
		{"direct recv code", CmdStat, 5, common.ErrRecv},
		{"unknown status", CmdSync, 42, common.ErrMisc},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := Decode(tt.cmd, []byte{tt.status})
			require.NoError(t, err, "a failure status carries no body")
			assert.False(t, resp.OK())
			assert.True(t, errors.Is(resp.Err(), tt.target), "got %v", resp.Err())
		})
	}
}

func TestDecodeErrors(t *testing.T) {
	t.Run("empty input", func(t *testing.T) {
		_, err := Decode(CmdGet, nil)
		assert.True(t, errors.Is(err, ErrShortResponse))
	})

	t.Run("truncated blob", func(t *testing.T) {
		_, err := Decode(CmdGet, cat(byte(0), be32(10), "abc"))
		assert.True(t, errors.Is(err, ErrShortResponse))
	})

	t.Run("truncated counter", func(t *testing.T) {
		_, err := Decode(CmdSize, cat(byte(0), be32(1)))
		assert.True(t, errors.Is(err, ErrShortResponse))
	})

	t.Run("negative length", func(t *testing.T) {
		_, err := Decode(CmdGet, cat(byte(0), []byte{0xFF, 0xFF, 0xFF, 0xFF}))
		assert.True(t, errors.Is(err, ErrMalformed))
	})

	t.Run("trailing bytes", func(t *testing.T) {
		_, err := Decode(CmdPut, []byte{0, 0})
		assert.True(t, errors.Is(err, ErrMalformed))
	})

	t.Run("length above limit", func(t *testing.T) {
		_, err := ReadResponse(bytes.NewReader(cat(byte(0), be32(100), make([]byte, 100))), CmdGet, 10)
		assert.True(t, errors.Is(err, ErrMalformed))
	})

	t.Run("unknown command", func(t *testing.T) {
		_, err := Decode(Command(200), []byte{0})
		assert.Error(t, err)
	})
}

func TestReadResponseFragmented(t *testing.T) {
	data := cat(byte(0), be32(2), be32(1), "a", be32(2), "bc")
	resp, err := ReadResponse(&oneByteReader{data: data}, CmdFwmKeys, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "bc"}, resp.Strings())
}

func TestReadResponseDoesNotReadAhead(t *testing.T) {
	// two responses back to back on the same stream
	stream := bytes.NewReader(cat(byte(0), be32(1), "x", byte(0), be32(0), be32(7)))

	first, err := ReadResponse(stream, CmdGet, 0)
	require.NoError(t, err)
	assert.Equal(t, []byte("x"), first.Value)

	second, err := ReadResponse(stream, CmdRNum, 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), second.Count)
	assert.Equal(t, 0, stream.Len())
}

func TestReadResponsePutNR(t *testing.T) {
	resp, err := ReadResponse(&oneByteReader{}, CmdPutNR, 0)
	require.NoError(t, err)
	assert.True(t, resp.OK())
}

func TestRoundTripGet(t *testing.T) {
	frame, err := EncodeGet("foo")
	require.NoError(t, err)
	assert.Equal(t, cat([]byte{0xC8, 0x30}, be32(3), "foo"), []byte(frame))

	resp, err := Decode(CmdGet, cat(byte(0), be32(3), "bar"))
	require.NoError(t, err)
	assert.Equal(t, "bar", string(resp.Value))
}

func TestMultiValue(t *testing.T) {
	assert.Equal(t, MultiValue{}, SplitMultiValue(nil))
	assert.Equal(t, MultiValue{"a", "", "b"}, SplitMultiValue([]byte("a\x00\x00b")))
	assert.Equal(t, []byte("a\x00b"), MultiValue{"a", "b"}.Bytes())
}
