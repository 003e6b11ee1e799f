package query

import (
	"strconv"
	"strings"

	"github.com/ValentinKolb/dTT/rpc/common"
	"github.com/ValentinKolb/dTT/rpc/protocol"
)

// hintClause is always the first clause of a query
const hintClause = "hint"

// Query collects the clauses of a table search. The first clause is always the
// hint marker. A terminal encode appends the marker of the search variant and
// resets the query, so the same value can be reused for the next search.
//
// A Query is not safe for concurrent use.
type Query struct {
	clauses [][]byte
}

// New creates an empty query
func New() *Query {
	q := &Query{}
	q.Reset()
	return q
}

// Reset drops all conditions, orders and limits
func (q *Query) Reset() {
	q.clauses = [][]byte{[]byte(hintClause)}
}

// Len returns the number of clauses added since the last reset (the hint marker
// is not counted)
func (q *Query) Len() int {
	return len(q.clauses) - 1
}

// Clauses returns a copy of the accumulated clauses including the hint marker
func (q *Query) Clauses() [][]byte {
	out := make([][]byte, len(q.clauses))
	copy(out, q.clauses)
	return out
}

// --------------------------------------------------------------------------
// Clause Builders
// --------------------------------------------------------------------------

// AddCond adds the condition "column <op> expr". Use common.QCNEGATE and
// common.QCNOIDX as flags on op.
func (q *Query) AddCond(name string, op common.CondOp, expr string) error {
	if err := checkToken("addcond", "column name", name, false); err != nil {
		return err
	}
	if err := checkToken("addcond", "expression", expr, true); err != nil {
		return err
	}
	q.add("addcond", name, strconv.FormatInt(int64(op), 10), expr)
	return nil
}

// SetOrder sets the sort order of the result
func (q *Query) SetOrder(name string, typ common.OrderType) error {
	if err := checkToken("setorder", "column name", name, false); err != nil {
		return err
	}
	q.add("setorder", name, strconv.FormatInt(int64(typ), 10))
	return nil
}

// SetLimit limits the result to max records after skipping skip records.
// Negative values mean unbounded.
func (q *Query) SetLimit(max, skip int) {
	if max < 0 {
		max = -1
	}
	if skip < 0 {
		skip = -1
	}
	q.add("setlimit", strconv.Itoa(max), strconv.Itoa(skip))
}

// --------------------------------------------------------------------------
// Terminal Encoding
// --------------------------------------------------------------------------

// Encode builds the misc frame of a search command and resets the query.
// columns is only valid for protocol.CmdSearchGet and restricts the returned
// columns; no columns returns all of them.
func (q *Query) Encode(cmd protocol.Command, columns ...string) (protocol.Frame, error) {
	args, opts, err := q.terminal(cmd, columns)
	if err != nil {
		return nil, err
	}
	frame, err := protocol.EncodeMisc(cmd.MiscName(), opts, args)
	if err != nil {
		return nil, err
	}
	q.Reset()
	return frame, nil
}

// terminal returns the clause list completed by the marker of cmd together
// with the options of the misc call
func (q *Query) terminal(cmd protocol.Command, columns []string) ([][]byte, common.Opt, error) {
	if !cmd.IsSearch() {
		return nil, 0, common.NewError(common.CodeInvalidOperation, cmd.String()+" is not a search command")
	}
	if len(columns) > 0 && cmd != protocol.CmdSearchGet {
		return nil, 0, common.NewError(common.CodeInvalidOperation, cmd.String()+" does not accept columns")
	}

	var marker string
	opts := common.MONOULOG
	switch cmd {
	case protocol.CmdSearch:
		marker = "get"
	case protocol.CmdSearchOut:
		marker = "out"
		opts = 0
	case protocol.CmdSearchCount:
		marker = "count"
	case protocol.CmdSearchGet:
		for _, col := range columns {
			if err := checkToken("searchget", "column name", col, false); err != nil {
				return nil, 0, err
			}
		}
		marker = strings.Join(append([]string{"get"}, columns...), "\x00")
	}

	args := make([][]byte, 0, len(q.clauses)+1)
	args = append(args, q.clauses...)
	args = append(args, []byte(marker))
	return args, opts, nil
}

// --------------------------------------------------------------------------
// Helper functions
// --------------------------------------------------------------------------

// add appends one NUL separated clause
func (q *Query) add(tokens ...string) {
	q.clauses = append(q.clauses, []byte(strings.Join(tokens, "\x00")))
}

// checkToken rejects values that would break the NUL separated clause layout
func checkToken(clause, field, value string, allowEmpty bool) error {
	if value == "" && !allowEmpty {
		return common.NewError(common.CodeInvalidOperation, clause+": "+field+" is required")
	}
	if strings.IndexByte(value, 0) >= 0 {
		return common.NewError(common.CodeInvalidOperation, clause+": "+field+" must not contain NUL bytes")
	}
	return nil
}
