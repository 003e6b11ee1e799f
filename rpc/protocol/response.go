package protocol

import (
	"bytes"
)

// HintMarker prefixes the trailing diagnostic element of search responses
var HintMarker = []byte("\x00\x00[[HINT]]\n")

// --------------------------------------------------------------------------
// Multi-value field
// --------------------------------------------------------------------------

// MultiValue is a value made of NUL separated segments, as stored by the
// tabular database for its columns.
type MultiValue []string

// SplitMultiValue splits b on NUL bytes. An empty value yields an empty list.
func SplitMultiValue(b []byte) MultiValue {
	if len(b) == 0 {
		return MultiValue{}
	}
	parts := bytes.Split(b, []byte{0})
	mv := make(MultiValue, len(parts))
	for i, p := range parts {
		mv[i] = string(p)
	}
	return mv
}

// Bytes joins the segments with NUL bytes
func (m MultiValue) Bytes() []byte {
	var buf bytes.Buffer
	for i, s := range m {
		if i > 0 {
			buf.WriteByte(0)
		}
		buf.WriteString(s)
	}
	return buf.Bytes()
}

// Record is one key/value pair of a mget response
type Record struct {
	Key    string
	Value  []byte
	Values MultiValue
}

// --------------------------------------------------------------------------
// Response Structure
// --------------------------------------------------------------------------

// Response represents a single decoded response.
// Which fields are used depends on the shape of the command.
type Response struct {
	Command Command
	Status  uint8 // 0 on success

	Count   uint64     // ShapeCounter: rnum, size
	Int     int32      // ShapeInt32: vsiz, addint
	Double  FixedPoint // ShapeFixedPoint: adddouble
	Value   []byte     // ShapeBlob: get, iternext, ext, stat
	Records []Record   // ShapeRecords: mget
	List    [][]byte   // ShapeList: fwmkeys, misc, table and search commands
	Hint    string     // trailing hint of misc responses (without the leading NUL bytes)
	UID     []byte     // genuid
}

// OK reports whether the server signaled success
func (r *Response) OK() bool {
	return r.Status == 0
}

// Err translates the status into an error of the common taxonomy (nil on success)
func (r *Response) Err() error {
	return r.Command.StatusError(r.Status)
}

// Strings returns the list elements as strings
func (r *Response) Strings() []string {
	out := make([]string, len(r.List))
	for i, b := range r.List {
		out[i] = string(b)
	}
	return out
}

// stripHint removes a trailing hint element from the list
func (r *Response) stripHint() {
	n := len(r.List)
	if n == 0 {
		return
	}
	last := r.List[n-1]
	if !bytes.HasPrefix(last, HintMarker) {
		return
	}
	r.Hint = string(last[2:])
	r.List = r.List[:n-1]
}
