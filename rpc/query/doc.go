/*
Package query builds the clause lists of table searches.

A query starts with the "hint" marker and collects NUL separated clauses:

	addcond\0<column>\0<operator>\0<expression>
	setorder\0<column>\0<type>
	setlimit\0<max>\0<skip>

Encode appends the marker of the search variant ("get", "out", "count" or
"get\0<col>\0<col>...") and wraps the clauses into a misc call of the function
"search". Read-only variants are sent with common.MONOULOG. After encoding the
query is reset and can be reused:

	q := query.New()
	_ = q.AddCond("age", common.QCNUMGE, "18")
	q.SetOrder("name", common.QOSTRASC)
	q.SetLimit(10, 0)
	frame, err := q.Encode(protocol.CmdSearch)
*/
package query
