package client

import (
	"bytes"
	"fmt"
	"io"
	"net"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/ValentinKolb/dTT/rpc/common"
	"github.com/ValentinKolb/dTT/rpc/protocol"
)

// fakeServer is an in-memory database speaking the binary protocol. It
// implements transport.IStreamClientTransport, answers every written frame
// immediately and serves the response bytes in small fragments.
type fakeServer struct {
	mu      sync.Mutex
	cond    *sync.Cond
	out     []byte
	closed  bool
	written int

	records map[string][]byte
	tables  map[string]map[string]string
	iter    []string
	uid     int64
	lastArg []string // arguments of the last misc call
}

func newFakeServer() *fakeServer {
	s := &fakeServer{
		records: make(map[string][]byte),
		tables:  make(map[string]map[string]string),
	}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// --------------------------------------------------------------------------
// Transport
// --------------------------------------------------------------------------

func (s *fakeServer) Connect(common.ClientConfig) error { return nil }

func (s *fakeServer) Write(p []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return common.WrapError(common.CodeSendError, net.ErrClosed, "fake server")
	}
	s.written += len(p)
	s.out = append(s.out, s.handle(p)...)
	s.cond.Broadcast()
	return nil
}

func (s *fakeServer) Read(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for len(s.out) == 0 && !s.closed {
		s.cond.Wait()
	}
	if len(s.out) == 0 {
		return 0, io.EOF
	}
	n := min(len(p), len(s.out), 7)
	copy(p, s.out[:n])
	s.out = s.out[n:]
	return n, nil
}

func (s *fakeServer) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.cond.Broadcast()
	return nil
}

func (s *fakeServer) bytesWritten() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.written
}

func (s *fakeServer) lastMiscArgs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastArg
}

// --------------------------------------------------------------------------
// Request handling
// --------------------------------------------------------------------------

// handle decodes one request frame and returns the encoded response
func (s *fakeServer) handle(frame []byte) []byte {
	r := protocol.NewReader(bytes.NewReader(frame), 0)
	_, _ = r.Uint8("magic")
	op, _ := r.Uint8("opcode")
	w := protocol.NewWriter(64)

	str := func(n int) string {
		b, _ := r.Bytes(n, "field")
		return string(b)
	}
	size := func() int {
		n, _ := r.Size("size")
		return n
	}

	switch op {
	case 0x10, 0x11, 0x12, 0x18: // put, putkeep, putcat, putnr
		ksiz, vsiz := size(), size()
		key, value := str(ksiz), str(vsiz)
		_, exists := s.records[key]
		switch {
		case op == 0x11 && exists:
			w.PutUint8(1)
		case op == 0x12:
			s.records[key] = append(s.records[key], value...)
			w.PutUint8(0)
		default:
			s.records[key] = []byte(value)
			w.PutUint8(0)
		}
		if op == 0x18 {
			return nil
		}

	case 0x20: // out
		key := str(size())
		if _, ok := s.records[key]; !ok {
			w.PutUint8(1)
			break
		}
		delete(s.records, key)
		w.PutUint8(0)

	case 0x30: // get
		value, ok := s.records[str(size())]
		if !ok {
			w.PutUint8(1)
			break
		}
		w.PutUint8(0)
		w.PutUint32(uint32(len(value)))
		w.PutBytes(value)

	case 0x31: // mget
		n := size()
		var found []string
		for i := 0; i < n; i++ {
			key := str(size())
			if _, ok := s.records[key]; ok {
				found = append(found, key)
			}
		}
		w.PutUint8(0)
		w.PutUint32(uint32(len(found)))
		for _, key := range found {
			w.PutUint32(uint32(len(key)))
			w.PutUint32(uint32(len(s.records[key])))
			w.PutString(key)
			w.PutBytes(s.records[key])
		}

	case 0x38: // vsiz
		value, ok := s.records[str(size())]
		if !ok {
			w.PutUint8(1)
			break
		}
		w.PutUint8(0)
		w.PutUint32(uint32(len(value)))

	case 0x50: // iterinit
		s.iter = s.sortedKeys()
		w.PutUint8(0)

	case 0x51: // iternext
		if len(s.iter) == 0 {
			w.PutUint8(1)
			break
		}
		key := s.iter[0]
		s.iter = s.iter[1:]
		w.PutUint8(0)
		w.PutUint32(uint32(len(key)))
		w.PutString(key)

	case 0x58: // fwmkeys
		psiz := size()
		max, _ := r.Int32("max")
		prefix := str(psiz)
		var keys []string
		for _, key := range s.sortedKeys() {
			if strings.HasPrefix(key, prefix) && (max < 0 || len(keys) < int(max)) {
				keys = append(keys, key)
			}
		}
		writeList(w, keys)

	case 0x60: // addint
		ksiz := size()
		num, _ := r.Int32("num")
		key := str(ksiz)
		var cur int32
		if v, ok := s.records[key]; ok {
			cur = int32(v[0])<<24 | int32(v[1])<<16 | int32(v[2])<<8 | int32(v[3])
		}
		cur += num
		s.records[key] = []byte{byte(cur >> 24), byte(cur >> 16), byte(cur >> 8), byte(cur)}
		w.PutUint8(0)
		w.PutUint32(uint32(cur))

	case 0x61: // adddouble (the stored value is kept as text)
		ksiz := size()
		integ, _ := r.Int64("integ")
		fract, _ := r.Int64("fract")
		key := str(ksiz)
		cur, _ := strconv.ParseFloat(string(s.records[key]), 64)
		cur += protocol.FixedPoint{Integral: integ, Fractional: fract}.Float64()
		s.records[key] = []byte(strconv.FormatFloat(cur, 'f', -1, 64))
		fp, _ := protocol.NewFixedPoint(cur)
		w.PutUint8(0)
		w.PutUint64(uint64(fp.Integral))
		w.PutUint64(uint64(fp.Fractional))

	case 0x72: // vanish
		s.records = make(map[string][]byte)
		s.tables = make(map[string]map[string]string)
		w.PutUint8(0)

	case 0x70: // sync
		w.PutUint8(0)

	case 0x80, 0x81: // rnum, size
		n := uint64(len(s.records) + len(s.tables))
		if op == 0x81 {
			n *= 100
		}
		w.PutUint8(0)
		w.PutUint64(n)

	case 0x88: // stat
		text := fmt.Sprintf("version\t1.1.41\nrnum\t%d\ntype\thash\n", len(s.records))
		w.PutUint8(0)
		w.PutUint32(uint32(len(text)))
		w.PutString(text)

	case 0x90: // misc
		nsiz := size()
		_, _ = r.Uint32("opts")
		rnum := size()
		name := str(nsiz)
		args := make([]string, rnum)
		for i := range args {
			args[i] = str(size())
		}
		s.lastArg = args
		s.misc(w, name, args)

	default:
		w.PutUint8(9)
	}
	return w.Frame()
}

// misc implements the table functions
func (s *fakeServer) misc(w *protocol.Writer, name string, args []string) {
	switch name {
	case "put", "putkeep", "putcat":
		pkey := args[0]
		if _, ok := s.tables[pkey]; ok && name == "putkeep" {
			w.PutUint8(1)
			return
		}
		if _, ok := s.tables[pkey]; !ok || name == "put" {
			s.tables[pkey] = make(map[string]string)
		}
		for i := 1; i+1 < len(args); i += 2 {
			s.tables[pkey][args[i]] = args[i+1]
		}
		writeList(w, nil)

	case "out":
		if _, ok := s.tables[args[0]]; !ok {
			w.PutUint8(1)
			return
		}
		delete(s.tables, args[0])
		writeList(w, nil)

	case "get":
		cols, ok := s.tables[args[0]]
		if !ok {
			w.PutUint8(1)
			return
		}
		var list []string
		for _, name := range sortedNames(cols) {
			list = append(list, name, cols[name])
		}
		writeList(w, list)

	case "setindex":
		writeList(w, nil)

	case "genuid":
		s.uid++
		writeList(w, []string{strconv.FormatInt(s.uid, 10)})

	case "search":
		s.search(w, args)

	case "echo":
		writeList(w, append(args, "\x00\x00[[HINT]]\necho"))

	default:
		w.PutUint8(1)
	}
}

// search supports QCSTREQ and QCNUMGE conditions
func (s *fakeServer) search(w *protocol.Writer, args []string) {
	var matches []string
	for _, pkey := range sortedNames(s.tables) {
		ok := true
		for _, clause := range args {
			parts := strings.Split(clause, "\x00")
			if parts[0] != "addcond" {
				continue
			}
			value := s.tables[pkey][parts[1]]
			switch parts[2] {
			case strconv.Itoa(int(common.QCSTREQ)):
				ok = ok && value == parts[3]
			case strconv.Itoa(int(common.QCNUMGE)):
				v, _ := strconv.Atoi(value)
				e, _ := strconv.Atoi(parts[3])
				ok = ok && v >= e
			}
		}
		if ok {
			matches = append(matches, pkey)
		}
	}

	hint := "\x00\x00[[HINT]]\nscanning the whole table\n"
	terminal := strings.Split(args[len(args)-1], "\x00")
	var list []string
	switch terminal[0] {
	case "count":
		list = []string{strconv.Itoa(len(matches))}
	case "out":
		for _, pkey := range matches {
			delete(s.tables, pkey)
		}
	case "get":
		for _, pkey := range matches {
			row := "\x00" + pkey
			names := terminal[1:]
			if len(names) == 0 {
				names = sortedNames(s.tables[pkey])
			}
			for _, name := range names {
				if value, ok := s.tables[pkey][name]; ok {
					row += "\x00" + name + "\x00" + value
				}
			}
			list = append(list, row)
		}
	}
	writeList(w, append(list, hint))
}

func (s *fakeServer) sortedKeys() []string {
	keys := make([]string, 0, len(s.records))
	for key := range s.records {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func sortedNames[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func writeList(w *protocol.Writer, list []string) {
	w.PutUint8(0)
	w.PutUint32(uint32(len(list)))
	for _, elem := range list {
		w.PutUint32(uint32(len(elem)))
		w.PutString(elem)
	}
}
