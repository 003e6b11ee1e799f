package protocol

import (
	"fmt"
	"math"

	"github.com/ValentinKolb/dTT/rpc/common"
)

// unboundedMax is sent as fwmkeys limit when the caller asks for all keys
const unboundedMax uint32 = 1 << 31

// Every encoder validates all arguments before a single byte is written, so an
// invalid call never produces a partial frame.

// --------------------------------------------------------------------------
// Validation helpers
// --------------------------------------------------------------------------

func invalidArg(cmd Command, format string, args ...interface{}) error {
	return common.NewError(common.CodeInvalidOperation, cmd.String()+": "+fmt.Sprintf(format, args...))
}

// checkSize verifies that a variable length field fits the 32-bit size prefix
func checkSize(cmd Command, field string, n int) error {
	if n > math.MaxInt32 {
		return invalidArg(cmd, "%s too large (%d bytes)", field, n)
	}
	return nil
}

// header writes the magic and the opcode of cmd
func header(cmd Command, sizeHint int) *Writer {
	w := NewWriter(2 + sizeHint)
	w.PutUint8(Magic)
	w.PutUint8(cmd.Opcode())
	return w
}

// --------------------------------------------------------------------------
// Templates shared by several commands
// --------------------------------------------------------------------------

// encodeKey writes [magic:2][ksiz:4][kbuf:*]
func encodeKey(cmd Command, key string) (Frame, error) {
	if err := checkSize(cmd, "key", len(key)); err != nil {
		return nil, err
	}
	w := header(cmd, 4+len(key))
	w.PutUint32(uint32(len(key)))
	w.PutString(key)
	return w.Frame(), nil
}

// encodeKeyValue writes [magic:2][ksiz:4][vsiz:4][kbuf:*][vbuf:*]
func encodeKeyValue(cmd Command, key string, value []byte) (Frame, error) {
	if err := checkSize(cmd, "key", len(key)); err != nil {
		return nil, err
	}
	if err := checkSize(cmd, "value", len(value)); err != nil {
		return nil, err
	}
	w := header(cmd, 8+len(key)+len(value))
	w.PutUint32(uint32(len(key)))
	w.PutUint32(uint32(len(value)))
	w.PutString(key)
	w.PutBytes(value)
	return w.Frame(), nil
}

// encodeKey32 writes [magic:2][ksiz:4][i32:4][kbuf:*]
func encodeKey32(cmd Command, key string, i32 uint32) (Frame, error) {
	if err := checkSize(cmd, "key", len(key)); err != nil {
		return nil, err
	}
	w := header(cmd, 8+len(key))
	w.PutUint32(uint32(len(key)))
	w.PutUint32(i32)
	w.PutString(key)
	return w.Frame(), nil
}

// EncodeBare encodes commands consisting of the magic only
// (iterinit, iternext, sync, vanish, rnum, size, stat)
func EncodeBare(cmd Command) (Frame, error) {
	switch cmd {
	case CmdIterInit, CmdIterNext, CmdSync, CmdVanish, CmdRNum, CmdSize, CmdStat:
		return header(cmd, 0).Frame(), nil
	default:
		return nil, invalidArg(cmd, "command takes arguments")
	}
}

// --------------------------------------------------------------------------
// Record commands
// --------------------------------------------------------------------------

// EncodePut encodes put, putkeep, putcat and putnr
func EncodePut(cmd Command, key string, value []byte) (Frame, error) {
	switch cmd {
	case CmdPut, CmdPutKeep, CmdPutCat, CmdPutNR:
		return encodeKeyValue(cmd, key, value)
	default:
		return nil, invalidArg(cmd, "not a put command")
	}
}

// EncodePutShl encodes [magic:2][ksiz:4][vsiz:4][width:4][kbuf:*][vbuf:*].
// A negative width is sent as zero.
func EncodePutShl(key string, value []byte, width int) (Frame, error) {
	if err := checkSize(CmdPutShl, "key", len(key)); err != nil {
		return nil, err
	}
	if err := checkSize(CmdPutShl, "value", len(value)); err != nil {
		return nil, err
	}
	if width > math.MaxInt32 {
		return nil, invalidArg(CmdPutShl, "width %d out of range", width)
	}
	if width < 0 {
		width = 0
	}
	w := header(CmdPutShl, 12+len(key)+len(value))
	w.PutUint32(uint32(len(key)))
	w.PutUint32(uint32(len(value)))
	w.PutUint32(uint32(width))
	w.PutString(key)
	w.PutBytes(value)
	return w.Frame(), nil
}

// EncodeOut encodes the removal of a record
func EncodeOut(key string) (Frame, error) {
	return encodeKey(CmdOut, key)
}

// EncodeGet encodes the retrieval of a record
func EncodeGet(key string) (Frame, error) {
	return encodeKey(CmdGet, key)
}

// EncodeVSiz encodes the size lookup of a value
func EncodeVSiz(key string) (Frame, error) {
	return encodeKey(CmdVSiz, key)
}

// EncodeMGet encodes [magic:2][rnum:4][{[ksiz:4][kbuf:*]}:*].
// The keys slice is only read.
func EncodeMGet(keys []string) (Frame, error) {
	if len(keys) > math.MaxInt32 {
		return nil, invalidArg(CmdMGet, "too many keys (%d)", len(keys))
	}
	size := 4
	for _, key := range keys {
		if err := checkSize(CmdMGet, "key", len(key)); err != nil {
			return nil, err
		}
		size += 4 + len(key)
	}
	w := header(CmdMGet, size)
	w.PutUint32(uint32(len(keys)))
	for _, key := range keys {
		w.PutUint32(uint32(len(key)))
		w.PutString(key)
	}
	return w.Frame(), nil
}

// EncodeFwmKeys encodes [magic:2][psiz:4][max:4][pbuf:*].
// A negative max requests all matching keys.
func EncodeFwmKeys(prefix string, max int) (Frame, error) {
	if max > math.MaxInt32 {
		return nil, invalidArg(CmdFwmKeys, "max %d out of range", max)
	}
	limit := unboundedMax
	if max >= 0 {
		limit = uint32(max)
	}
	return encodeKey32(CmdFwmKeys, prefix, limit)
}

// EncodeAddInt encodes [magic:2][ksiz:4][num:4][kbuf:*]
func EncodeAddInt(key string, num int) (Frame, error) {
	if num > math.MaxInt32 || num < math.MinInt32 {
		return nil, invalidArg(CmdAddInt, "number %d does not fit 32 bits", num)
	}
	return encodeKey32(CmdAddInt, key, uint32(int32(num)))
}

// EncodeAddDouble encodes [magic:2][ksiz:4][integ:8][fract:8][kbuf:*]
func EncodeAddDouble(key string, num float64) (Frame, error) {
	if err := checkSize(CmdAddDouble, "key", len(key)); err != nil {
		return nil, err
	}
	fp, err := NewFixedPoint(num)
	if err != nil {
		return nil, err
	}
	w := header(CmdAddDouble, 20+len(key))
	w.PutUint32(uint32(len(key)))
	w.PutUint64(uint64(fp.Integral))
	w.PutUint64(uint64(fp.Fractional))
	w.PutString(key)
	return w.Frame(), nil
}

// EncodeExt encodes [magic:2][nsiz:4][opts:4][ksiz:4][vsiz:4][nbuf:*][kbuf:*][vbuf:*]
func EncodeExt(name string, opts common.Opt, key string, value []byte) (Frame, error) {
	if name == "" {
		return nil, invalidArg(CmdExt, "function name is required")
	}
	if err := checkSize(CmdExt, "function name", len(name)); err != nil {
		return nil, err
	}
	if err := checkSize(CmdExt, "key", len(key)); err != nil {
		return nil, err
	}
	if err := checkSize(CmdExt, "value", len(value)); err != nil {
		return nil, err
	}
	w := header(CmdExt, 16+len(name)+len(key)+len(value))
	w.PutUint32(uint32(len(name)))
	w.PutUint32(uint32(opts))
	w.PutUint32(uint32(len(key)))
	w.PutUint32(uint32(len(value)))
	w.PutString(name)
	w.PutString(key)
	w.PutBytes(value)
	return w.Frame(), nil
}

// --------------------------------------------------------------------------
// Database commands
// --------------------------------------------------------------------------

// EncodeOptimize encodes [magic:2][psiz:4][pbuf:*]
func EncodeOptimize(params string) (Frame, error) {
	return encodeKey(CmdOptimize, params)
}

// EncodeCopy encodes [magic:2][psiz:4][pbuf:*]
func EncodeCopy(path string) (Frame, error) {
	if path == "" {
		return nil, invalidArg(CmdCopy, "path is required")
	}
	return encodeKey(CmdCopy, path)
}

// EncodeRestore encodes [magic:2][psiz:4][ts:8][opts:4][pbuf:*]
func EncodeRestore(path string, tsMicro uint64, opts common.Opt) (Frame, error) {
	if path == "" {
		return nil, invalidArg(CmdRestore, "path is required")
	}
	if err := checkSize(CmdRestore, "path", len(path)); err != nil {
		return nil, err
	}
	w := header(CmdRestore, 16+len(path))
	w.PutUint32(uint32(len(path)))
	w.PutUint64(tsMicro)
	w.PutUint32(uint32(opts))
	w.PutString(path)
	return w.Frame(), nil
}

// EncodeSetMst encodes [magic:2][hsiz:4][port:4][ts:8][opts:4][host:*].
// An empty host removes the replication master.
func EncodeSetMst(host string, port int, tsMicro uint64, opts common.Opt) (Frame, error) {
	if port < 0 || port > math.MaxUint16 {
		return nil, invalidArg(CmdSetMst, "port %d out of range", port)
	}
	if err := checkSize(CmdSetMst, "host", len(host)); err != nil {
		return nil, err
	}
	w := header(CmdSetMst, 20+len(host))
	w.PutUint32(uint32(len(host)))
	w.PutUint32(uint32(port))
	w.PutUint64(tsMicro)
	w.PutUint32(uint32(opts))
	w.PutString(host)
	return w.Frame(), nil
}

// --------------------------------------------------------------------------
// Misc
// --------------------------------------------------------------------------

// EncodeMisc encodes [magic:2][nsiz:4][opts:4][rnum:4][nbuf:*][{[asiz:4][abuf:*]}:*]
func EncodeMisc(name string, opts common.Opt, args [][]byte) (Frame, error) {
	if name == "" {
		return nil, invalidArg(CmdMisc, "function name is required")
	}
	if err := checkSize(CmdMisc, "function name", len(name)); err != nil {
		return nil, err
	}
	if len(args) > math.MaxInt32 {
		return nil, invalidArg(CmdMisc, "too many arguments (%d)", len(args))
	}
	size := 12 + len(name)
	for i, arg := range args {
		if err := checkSize(CmdMisc, fmt.Sprintf("argument %d", i), len(arg)); err != nil {
			return nil, err
		}
		size += 4 + len(arg)
	}
	w := header(CmdMisc, size)
	w.PutUint32(uint32(len(name)))
	w.PutUint32(uint32(opts))
	w.PutUint32(uint32(len(args)))
	w.PutString(name)
	for _, arg := range args {
		w.PutUint32(uint32(len(arg)))
		w.PutBytes(arg)
	}
	return w.Frame(), nil
}

// StringArgs converts strings into misc arguments
func StringArgs(args ...string) [][]byte {
	out := make([][]byte, len(args))
	for i, arg := range args {
		out[i] = []byte(arg)
	}
	return out
}
