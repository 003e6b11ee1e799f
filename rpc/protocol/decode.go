package protocol

import (
	"bytes"
	"io"

	"github.com/pkg/errors"
)

// ReadResponse reads exactly one response of cmd from r. It returns as soon as
// all declared fields are consumed and never reads ahead. maxSize limits every
// length prefixed field and element count (zero means no limit).
//
// A non-zero status is not an error of ReadResponse; use Response.Err.
// Commands without a response (putnr) return a successful Response without
// touching r.
func ReadResponse(r io.Reader, cmd Command, maxSize int) (*Response, error) {
	if !cmd.Valid() {
		return nil, errors.Errorf("cannot decode response of unknown command %d", cmd)
	}

	resp := &Response{Command: cmd}
	if !cmd.ExpectsResponse() {
		return resp, nil
	}

	rd := NewReader(r, maxSize)
	status, err := rd.Uint8("status")
	if err != nil {
		return nil, err
	}
	resp.Status = status

	// a failed command carries no body
	if status != 0 {
		return resp, nil
	}

	switch cmd.Shape() {
	case ShapeAck:
		// status only

	case ShapeCounter:
		resp.Count, err = rd.Uint64("counter")

	case ShapeInt32:
		resp.Int, err = rd.Int32("value")

	case ShapeFixedPoint:
		if resp.Double.Integral, err = rd.Int64("integral"); err == nil {
			resp.Double.Fractional, err = rd.Int64("fractional")
		}

	case ShapeBlob:
		resp.Value, err = rd.SizedBytes("value")

	case ShapeRecords:
		resp.Records, err = readRecords(rd)

	case ShapeList:
		resp.List, err = readList(rd)
		if err == nil {
			finishList(resp)
		}
	}

	if err != nil {
		return nil, err
	}
	return resp, nil
}

// Decode parses a complete response held in data. Truncated data yields
// ErrShortResponse, surplus bytes ErrMalformed.
func Decode(cmd Command, data []byte) (*Response, error) {
	rd := bytes.NewReader(data)
	resp, err := ReadResponse(rd, cmd, 0)
	if err != nil {
		return nil, err
	}
	if rd.Len() > 0 {
		return nil, errors.Wrapf(ErrMalformed, "%d trailing bytes after %s response", rd.Len(), cmd)
	}
	return resp, nil
}

// --------------------------------------------------------------------------
// Helper functions
// --------------------------------------------------------------------------

// readRecords reads [rnum:4][{[ksiz:4][vsiz:4][kbuf:*][vbuf:*]}:*]
func readRecords(rd *Reader) ([]Record, error) {
	n, err := rd.Size("record count")
	if err != nil {
		return nil, err
	}
	records := make([]Record, 0, min(n, 1024))
	for i := 0; i < n; i++ {
		ksiz, err := rd.Size("key size")
		if err != nil {
			return nil, err
		}
		vsiz, err := rd.Size("value size")
		if err != nil {
			return nil, err
		}
		key, err := rd.Bytes(ksiz, "key")
		if err != nil {
			return nil, err
		}
		value, err := rd.Bytes(vsiz, "value")
		if err != nil {
			return nil, err
		}
		records = append(records, Record{
			Key:    string(key),
			Value:  value,
			Values: SplitMultiValue(value),
		})
	}
	return records, nil
}

// readList reads [num:4][{[siz:4][buf:*]}:*]
func readList(rd *Reader) ([][]byte, error) {
	n, err := rd.Size("element count")
	if err != nil {
		return nil, err
	}
	list := make([][]byte, 0, min(n, 1024))
	for i := 0; i < n; i++ {
		elem, err := rd.SizedBytes("element")
		if err != nil {
			return nil, err
		}
		list = append(list, elem)
	}
	return list, nil
}

// finishList applies the command specific interpretation of a list response
func finishList(resp *Response) {
	if !resp.Command.IsMisc() {
		return
	}
	resp.stripHint()

	if resp.Command == CmdGenUID {
		if len(resp.List) > 0 {
			resp.UID = resp.List[0]
		}
		resp.List = nil
	}
}
