package client

import (
	"bytes"
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/ValentinKolb/dTT/rpc/common"
	"github.com/ValentinKolb/dTT/rpc/protocol"
	"github.com/ValentinKolb/dTT/rpc/query"
	"github.com/ValentinKolb/dTT/rpc/transport"
)

// Row is one record of a search result
type Row struct {
	PrimaryKey string
	Columns    map[string]string
}

// Table is the client of a tabular database. Records are identified by a
// primary key and hold named string columns.
type Table struct {
	database
}

// NewTable connects the transport and creates a Table client on it
func NewTable(config common.ClientConfig, t transport.IStreamClientTransport) (*Table, error) {
	adapter, err := newAdapter(config, t)
	if err != nil {
		return nil, err
	}
	return &Table{database{adapter}}, nil
}

// --------------------------------------------------------------------------
// Records
// --------------------------------------------------------------------------

// Put stores a record, an existing record is overwritten
func (t *Table) Put(ctx context.Context, pkey string, cols map[string]string) error {
	return t.put(ctx, protocol.CmdTablePut, pkey, cols)
}

// PutKeep stores a new record. If the primary key exists the call fails with
// ExistingRecord.
func (t *Table) PutKeep(ctx context.Context, pkey string, cols map[string]string) error {
	return t.put(ctx, protocol.CmdTablePutKeep, pkey, cols)
}

// PutCat merges cols into an existing record (or creates it)
func (t *Table) PutCat(ctx context.Context, pkey string, cols map[string]string) error {
	return t.put(ctx, protocol.CmdTablePutCat, pkey, cols)
}

// Out removes a record. A missing record fails with NoRecordFound.
func (t *Table) Out(ctx context.Context, pkey string) error {
	_, err := t.invokeMisc(ctx, protocol.CmdTableOut, 0, [][]byte{[]byte(pkey)})
	return err
}

// Get retrieves the columns of a record. A missing record fails with NoRecordFound.
func (t *Table) Get(ctx context.Context, pkey string) (map[string]string, error) {
	resp, err := t.invokeMisc(ctx, protocol.CmdTableGet, common.MONOULOG, [][]byte{[]byte(pkey)})
	if err != nil {
		return nil, err
	}
	if len(resp.List)%2 != 0 {
		return nil, malformed(protocol.CmdTableGet, "odd number of column elements (%d)", len(resp.List))
	}
	cols := make(map[string]string, len(resp.List)/2)
	for i := 0; i < len(resp.List); i += 2 {
		cols[string(resp.List[i])] = string(resp.List[i+1])
	}
	return cols, nil
}

// SetIndex creates, optimizes (common.ITOPT) or removes (common.ITVOID) the
// index of a column
func (t *Table) SetIndex(ctx context.Context, name string, itype common.IndexType) error {
	if name == "" {
		return common.NewError(common.CodeInvalidOperation, "setindex: column name is required")
	}
	args := protocol.StringArgs(name, strconv.FormatInt(int64(itype), 10))
	_, err := t.invokeMisc(ctx, protocol.CmdSetIndex, 0, args)
	return err
}

// GenUID generates a new unique primary key
func (t *Table) GenUID(ctx context.Context) (int64, error) {
	resp, err := t.invokeMisc(ctx, protocol.CmdGenUID, 0, nil)
	if err != nil {
		return 0, err
	}
	if len(resp.UID) == 0 {
		return 0, malformed(protocol.CmdGenUID, "no unique ID in response")
	}
	return parseDecimal(protocol.CmdGenUID, resp.UID)
}

// --------------------------------------------------------------------------
// Search
// --------------------------------------------------------------------------

// Search returns the primary keys of all records matching q and the hint of
// the server. q is reset afterwards.
func (t *Table) Search(ctx context.Context, q *query.Query) ([]string, string, error) {
	resp, err := t.search(ctx, q, protocol.CmdSearch)
	if err != nil {
		return nil, "", err
	}
	keys := make([]string, 0, len(resp.List))
	for _, elem := range resp.List {
		// the "get" marker makes the server answer with rows, plain keys are
		// accepted as well
		if bytes.IndexByte(elem, 0) < 0 {
			keys = append(keys, string(elem))
			continue
		}
		row, err := parseRow(elem)
		if err != nil {
			return nil, "", err
		}
		keys = append(keys, row.PrimaryKey)
	}
	return keys, resp.Hint, nil
}

// SearchOut removes all records matching q
func (t *Table) SearchOut(ctx context.Context, q *query.Query) (string, error) {
	resp, err := t.search(ctx, q, protocol.CmdSearchOut)
	if err != nil {
		return "", err
	}
	return resp.Hint, nil
}

// SearchGet returns the records matching q. columns restricts the returned
// columns; without columns all columns are returned.
func (t *Table) SearchGet(ctx context.Context, q *query.Query, columns ...string) ([]Row, string, error) {
	resp, err := t.search(ctx, q, protocol.CmdSearchGet, columns...)
	if err != nil {
		return nil, "", err
	}
	rows := make([]Row, 0, len(resp.List))
	for _, elem := range resp.List {
		row, err := parseRow(elem)
		if err != nil {
			return nil, "", err
		}
		rows = append(rows, row)
	}
	return rows, resp.Hint, nil
}

// SearchCount returns the number of records matching q
func (t *Table) SearchCount(ctx context.Context, q *query.Query) (int, string, error) {
	resp, err := t.search(ctx, q, protocol.CmdSearchCount)
	if err != nil {
		return 0, "", err
	}
	if len(resp.List) == 0 {
		return 0, "", malformed(protocol.CmdSearchCount, "no count in response")
	}
	n, err := parseDecimal(protocol.CmdSearchCount, resp.List[0])
	if err != nil {
		return 0, "", err
	}
	return int(n), resp.Hint, nil
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

func (t *Table) put(ctx context.Context, cmd protocol.Command, pkey string, cols map[string]string) error {
	args, err := columnArgs(cmd, pkey, cols)
	if err != nil {
		return err
	}
	_, err = t.invokeMisc(ctx, cmd, 0, args)
	return err
}

func (t *Table) search(ctx context.Context, q *query.Query, cmd protocol.Command, columns ...string) (*protocol.Response, error) {
	if q == nil {
		return nil, common.NewError(common.CodeInvalidOperation, cmd.String()+": no query provided")
	}
	frame, err := q.Encode(cmd, columns...)
	if err != nil {
		return nil, err
	}
	return t.invoke(ctx, cmd, frame)
}

// columnArgs builds [pkey, name1, value1, ...] with the column names sorted
func columnArgs(cmd protocol.Command, pkey string, cols map[string]string) ([][]byte, error) {
	names := make([]string, 0, len(cols))
	for name, value := range cols {
		if name == "" {
			return nil, common.NewError(common.CodeInvalidOperation, cmd.String()+": empty column name")
		}
		if strings.IndexByte(name, 0) >= 0 || strings.IndexByte(value, 0) >= 0 {
			return nil, common.NewError(common.CodeInvalidOperation, cmd.String()+": column "+strconv.Quote(name)+" contains NUL bytes")
		}
		names = append(names, name)
	}
	sort.Strings(names)

	args := make([][]byte, 0, 1+2*len(names))
	args = append(args, []byte(pkey))
	for _, name := range names {
		args = append(args, []byte(name), []byte(cols[name]))
	}
	return args, nil
}

// parseRow parses a NUL separated search row "\0pkey\0name1\0value1...".
// The column with the empty name carries the primary key.
func parseRow(elem []byte) (Row, error) {
	parts := bytes.Split(elem, []byte{0})
	if len(parts)%2 != 0 {
		return Row{}, malformed(protocol.CmdSearchGet, "odd number of row fields (%d)", len(parts))
	}
	row := Row{Columns: make(map[string]string, len(parts)/2)}
	for i := 0; i < len(parts); i += 2 {
		name, value := string(parts[i]), string(parts[i+1])
		if name == "" {
			row.PrimaryKey = value
			continue
		}
		row.Columns[name] = value
	}
	return row, nil
}
