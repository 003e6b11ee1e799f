package table

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ValentinKolb/dTT/rpc/common"
	"github.com/ValentinKolb/dTT/rpc/query"
)

var (
	condOps = map[string]common.CondOp{
		"streq":   common.QCSTREQ,
		"strinc":  common.QCSTRINC,
		"strbw":   common.QCSTRBW,
		"strew":   common.QCSTREW,
		"strand":  common.QCSTRAND,
		"stror":   common.QCSTROR,
		"stroreq": common.QCSTROREQ,
		"strrx":   common.QCSTRRX,
		"numeq":   common.QCNUMEQ,
		"numgt":   common.QCNUMGT,
		"numge":   common.QCNUMGE,
		"numlt":   common.QCNUMLT,
		"numle":   common.QCNUMLE,
		"numbt":   common.QCNUMBT,
		"numoreq": common.QCNUMOREQ,
		"ftsph":   common.QCFTSPH,
		"ftsand":  common.QCFTSAND,
		"ftsor":   common.QCFTSOR,
		"ftsex":   common.QCFTSEX,
	}

	orderTypes = map[string]common.OrderType{
		"strasc":  common.QOSTRASC,
		"strdesc": common.QOSTRDESC,
		"numasc":  common.QONUMASC,
		"numdesc": common.QONUMDESC,
	}

	indexTypes = map[string]common.IndexType{
		"lexical": common.ITLEXICAL,
		"decimal": common.ITDECIMAL,
		"token":   common.ITTOKEN,
		"qgram":   common.ITQGRAM,
		"opt":     common.ITOPT,
		"void":    common.ITVOID,
	}
)

// parseCondOp parses an operator name. A leading "!" negates the condition and
// a leading "~" disables the use of an index.
func parseCondOp(s string) (common.CondOp, error) {
	var flags common.CondOp
	for len(s) > 0 {
		if s[0] == '!' {
			flags |= common.QCNEGATE
		} else if s[0] == '~' {
			flags |= common.QCNOIDX
		} else {
			break
		}
		s = s[1:]
	}
	op, ok := condOps[strings.ToLower(s)]
	if !ok {
		return 0, fmt.Errorf("invalid condition operator %q", s)
	}
	return op | flags, nil
}

// parseIndexType parses an index type name
func parseIndexType(s string) (common.IndexType, error) {
	t, ok := indexTypes[strings.ToLower(s)]
	if !ok {
		return 0, fmt.Errorf("invalid index type %q (one of lexical, decimal, token, qgram, opt, void)", s)
	}
	return t, nil
}

// parseColumns parses name=value pairs into a column map
func parseColumns(args []string) (map[string]string, error) {
	cols := make(map[string]string, len(args))
	for _, arg := range args {
		name, value, ok := strings.Cut(arg, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid column %q, expected name=value", arg)
		}
		cols[name] = value
	}
	return cols, nil
}

// buildQuery assembles a query from the search flags.
// conds are name:op:expr, order is name:type and limit is max[:skip].
func buildQuery(conds []string, order, limit string) (*query.Query, error) {
	q := query.New()

	for _, c := range conds {
		parts := strings.SplitN(c, ":", 3)
		if len(parts) != 3 {
			return nil, fmt.Errorf("invalid condition %q, expected name:op:expr", c)
		}
		op, err := parseCondOp(parts[1])
		if err != nil {
			return nil, err
		}
		if err := q.AddCond(parts[0], op, parts[2]); err != nil {
			return nil, err
		}
	}

	if order != "" {
		name, typ, ok := strings.Cut(order, ":")
		if !ok {
			return nil, fmt.Errorf("invalid order %q, expected name:type", order)
		}
		t, found := orderTypes[strings.ToLower(typ)]
		if !found {
			return nil, fmt.Errorf("invalid order type %q", typ)
		}
		if err := q.SetOrder(name, t); err != nil {
			return nil, err
		}
	}

	if limit != "" {
		maxStr, skipStr, hasSkip := strings.Cut(limit, ":")
		limitMax, err := strconv.Atoi(maxStr)
		if err != nil {
			return nil, fmt.Errorf("invalid limit %q: %w", limit, err)
		}
		skip := 0
		if hasSkip {
			if skip, err = strconv.Atoi(skipStr); err != nil {
				return nil, fmt.Errorf("invalid limit %q: %w", limit, err)
			}
		}
		q.SetLimit(limitMax, skip)
	}

	return q, nil
}
