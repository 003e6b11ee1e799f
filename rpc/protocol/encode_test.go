package protocol

import (
	"encoding/binary"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/ValentinKolb/dTT/rpc/common"
	"github.com/stretchr/testify/require"
)

// be32 returns v as 4 big endian bytes
func be32(v uint32) []byte {
	return binary.BigEndian.AppendUint32(nil, v)
}

// be64 returns v as 8 big endian bytes
func be64(v uint64) []byte {
	return binary.BigEndian.AppendUint64(nil, v)
}

// cat concatenates byte slices and strings
func cat(parts ...interface{}) []byte {
	var out []byte
	for _, p := range parts {
		switch v := p.(type) {
		case []byte:
			out = append(out, v...)
		case string:
			out = append(out, v...)
		case byte:
			out = append(out, v)
		default:
			panic("unsupported part")
		}
	}
	return out
}

func TestEncodeFrames(t *testing.T) {
	mustFrame := func(f Frame, err error) Frame {
		require.NoError(t, err)
		return f
	}

	tests := []struct {
		name     string
		frame    Frame
		expected []byte
	}{
		{
			name:     "put",
			frame:    mustFrame(EncodePut(CmdPut, "key", []byte("value"))),
			expected: cat([]byte{0xC8, 0x10}, be32(3), be32(5), "key", "value"),
		},
		{
			name:     "putkeep",
			frame:    mustFrame(EncodePut(CmdPutKeep, "k", []byte("v"))),
			expected: cat([]byte{0xC8, 0x11}, be32(1), be32(1), "k", "v"),
		},
		{
			name:     "putcat",
			frame:    mustFrame(EncodePut(CmdPutCat, "k", []byte("v"))),
			expected: cat([]byte{0xC8, 0x12}, be32(1), be32(1), "k", "v"),
		},
		{
			name:     "putnr",
			frame:    mustFrame(EncodePut(CmdPutNR, "k", nil)),
			expected: cat([]byte{0xC8, 0x18}, be32(1), be32(0), "k"),
		},
		{
			name:     "putshl",
			frame:    mustFrame(EncodePutShl("k", []byte("abc"), 2)),
			expected: cat([]byte{0xC8, 0x13}, be32(1), be32(3), be32(2), "k", "abc"),
		},
		{
			name:     "putshl with negative width",
			frame:    mustFrame(EncodePutShl("k", []byte("abc"), -5)),
			expected: cat([]byte{0xC8, 0x13}, be32(1), be32(3), be32(0), "k", "abc"),
		},
		{
			name:     "out",
			frame:    mustFrame(EncodeOut("key")),
			expected: cat([]byte{0xC8, 0x20}, be32(3), "key"),
		},
		{
			name:     "get",
			frame:    mustFrame(EncodeGet("k")),
			expected: cat([]byte{0xC8, 0x30}, be32(1), "k"),
		},
		{
			name:     "vsiz",
			frame:    mustFrame(EncodeVSiz("k")),
			expected: cat([]byte{0xC8, 0x38}, be32(1), "k"),
		},
		{
			name:     "mget",
			frame:    mustFrame(EncodeMGet([]string{"a", "bc"})),
			expected: cat([]byte{0xC8, 0x31}, be32(2), be32(1), "a", be32(2), "bc"),
		},
		{
			name:     "mget without keys",
			frame:    mustFrame(EncodeMGet(nil)),
			expected: cat([]byte{0xC8, 0x31}, be32(0)),
		},
		{
			name:     "iterinit",
			frame:    mustFrame(EncodeBare(CmdIterInit)),
			expected: []byte{0xC8, 0x50},
		},
		{
			name:     "iternext",
			frame:    mustFrame(EncodeBare(CmdIterNext)),
			expected: []byte{0xC8, 0x51},
		},
		{
			name:     "fwmkeys",
			frame:    mustFrame(EncodeFwmKeys("pre", 10)),
			expected: cat([]byte{0xC8, 0x58}, be32(3), be32(10), "pre"),
		},
		{
			name:     "fwmkeys unbounded",
			frame:    mustFrame(EncodeFwmKeys("pre", -1)),
			expected: cat([]byte{0xC8, 0x58}, be32(3), be32(1<<31), "pre"),
		},
		{
			name:     "addint negative delta",
			frame:    mustFrame(EncodeAddInt("n", -3)),
			expected: cat([]byte{0xC8, 0x60}, be32(1), []byte{0xFF, 0xFF, 0xFF, 0xFD}, "n"),
		},
		{
			name:     "adddouble",
			frame:    mustFrame(EncodeAddDouble("k", 2.5)),
			expected: cat([]byte{0xC8, 0x61}, be32(1), be64(2), be64(5_000_000_000), "k"),
		},
		{
			name:     "ext",
			frame:    mustFrame(EncodeExt("fn", common.XOLCKREC, "k", []byte("v"))),
			expected: cat([]byte{0xC8, 0x68}, be32(2), be32(1), be32(1), be32(1), "fn", "k", "v"),
		},
		{
			name:     "sync",
			frame:    mustFrame(EncodeBare(CmdSync)),
			expected: []byte{0xC8, 0x70},
		},
		{
			name:     "optimize",
			frame:    mustFrame(EncodeOptimize("#bnum=1000")),
			expected: cat([]byte{0xC8, 0x71}, be32(10), "#bnum=1000"),
		},
		{
			name:     "vanish",
			frame:    mustFrame(EncodeBare(CmdVanish)),
			expected: []byte{0xC8, 0x72},
		},
		{
			name:     "copy",
			frame:    mustFrame(EncodeCopy("/tmp/db")),
			expected: cat([]byte{0xC8, 0x73}, be32(7), "/tmp/db"),
		},
		{
			name:     "restore",
			frame:    mustFrame(EncodeRestore("/ulog", 1<<32+7, common.ROCHKCON)),
			expected: cat([]byte{0xC8, 0x74}, be32(5), be32(1), be32(7), be32(1), "/ulog"),
		},
		{
			name:     "setmst",
			frame:    mustFrame(EncodeSetMst("host", 1978, 42, 0)),
			expected: cat([]byte{0xC8, 0x78}, be32(4), be32(1978), be64(42), be32(0), "host"),
		},
		{
			name:     "rnum",
			frame:    mustFrame(EncodeBare(CmdRNum)),
			expected: []byte{0xC8, 0x80},
		},
		{
			name:     "size",
			frame:    mustFrame(EncodeBare(CmdSize)),
			expected: []byte{0xC8, 0x81},
		},
		{
			name:     "stat",
			frame:    mustFrame(EncodeBare(CmdStat)),
			expected: []byte{0xC8, 0x88},
		},
		{
			name:     "misc",
			frame:    mustFrame(EncodeMisc("put", 0, StringArgs("pk", "name", "alice"))),
			expected: cat([]byte{0xC8, 0x90}, be32(3), be32(0), be32(3), "put", be32(2), "pk", be32(4), "name", be32(5), "alice"),
		},
		{
			name:     "misc without arguments",
			frame:    mustFrame(EncodeMisc("genuid", common.MONOULOG, nil)),
			expected: cat([]byte{0xC8, 0x90}, be32(6), be32(1), be32(0), "genuid"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, []byte(tt.frame))
		})
	}
}

func TestEncodeMGetDoesNotConsumeKeys(t *testing.T) {
	keys := []string{"a", "b", "c"}
	_, err := EncodeMGet(keys)
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b", "c"}, keys)
}

func TestEncodeInvalidArguments(t *testing.T) {
	tests := []struct {
		name string
		fn   func() (Frame, error)
	}{
		{"put with wrong command", func() (Frame, error) { return EncodePut(CmdGet, "k", nil) }},
		{"bare with arguments", func() (Frame, error) { return EncodeBare(CmdGet) }},
		{"addint overflow", func() (Frame, error) { return EncodeAddInt("k", math.MaxInt32+1) }},
		{"adddouble NaN", func() (Frame, error) { return EncodeAddDouble("k", math.NaN()) }},
		{"adddouble infinity", func() (Frame, error) { return EncodeAddDouble("k", math.Inf(1)) }},
		{"adddouble integral overflow", func() (Frame, error) { return EncodeAddDouble("k", 1e20) }},
		{"ext without name", func() (Frame, error) { return EncodeExt("", 0, "k", nil) }},
		{"misc without name", func() (Frame, error) { return EncodeMisc("", 0, nil) }},
		{"copy without path", func() (Frame, error) { return EncodeCopy("") }},
		{"restore without path", func() (Frame, error) { return EncodeRestore("", 0, 0) }},
		{"setmst port out of range", func() (Frame, error) { return EncodeSetMst("h", 70000, 0, 0) }},
		{"fwmkeys max out of range", func() (Frame, error) { return EncodeFwmKeys("p", math.MaxInt32+1) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame, err := tt.fn()
			require.Error(t, err)
			require.Nil(t, frame, "no partial frame may be produced")
			require.True(t, errors.Is(err, common.ErrInvalid), "expected invalid operation, got %v", err)
		})
	}
}

func TestEncodeLargeKeyPrefix(t *testing.T) {
	key := strings.Repeat("x", 70000)
	frame, err := EncodeGet(key)
	require.NoError(t, err)
	require.Equal(t, be32(70000), []byte(frame[2:6]))
	require.Len(t, frame, 6+70000)
}
