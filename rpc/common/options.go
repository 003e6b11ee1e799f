package common

// --------------------------------------------------------------------------
// Option flags sent with commands
// --------------------------------------------------------------------------

// Opt is a bit set of command options.
type Opt uint32

const (
	// TRECON reconnects automatically (tuning option)
	TRECON Opt = 1 << 0

	// XOLCKREC locks the record while a scripting extension runs
	XOLCKREC Opt = 1 << 0
	// XOLCKGLB locks the whole database while a scripting extension runs
	XOLCKGLB Opt = 1 << 1

	// ROCHKCON enables consistency checking on restore
	ROCHKCON Opt = 1 << 0

	// MONOULOG omits the update log for misc operations
	MONOULOG Opt = 1 << 0
)

// --------------------------------------------------------------------------
// Table index types (setindex)
// --------------------------------------------------------------------------

// IndexType selects the kind of column index created by setindex.
type IndexType int32

const (
	ITLEXICAL IndexType = 0       // lexical string
	ITDECIMAL IndexType = 1       // decimal string
	ITTOKEN   IndexType = 2       // token inverted index
	ITQGRAM   IndexType = 3       // q-gram inverted index
	ITOPT     IndexType = 9998    // optimize the index
	ITVOID    IndexType = 9999    // remove the index
	ITKEEP    IndexType = 1 << 24 // keep an existing index
)

// --------------------------------------------------------------------------
// Query condition operators (addcond)
// --------------------------------------------------------------------------

// CondOp is the operator of a query condition.
type CondOp int32

const (
	QCSTREQ   CondOp = iota // string is equal to
	QCSTRINC                // string is included in
	QCSTRBW                 // string begins with
	QCSTREW                 // string ends with
	QCSTRAND                // string includes all tokens in
	QCSTROR                 // string includes at least one token in
	QCSTROREQ               // string is equal to at least one token in
	QCSTRRX                 // string matches regular expressions of
	QCNUMEQ                 // number is equal to
	QCNUMGT                 // number is greater than
	QCNUMGE                 // number is greater than or equal to
	QCNUMLT                 // number is less than
	QCNUMLE                 // number is less than or equal to
	QCNUMBT                 // number is between two tokens of
	QCNUMOREQ               // number is equal to at least one token in
	QCFTSPH                 // full-text search with the phrase of
	QCFTSAND                // full-text search with all tokens in
	QCFTSOR                 // full-text search with at least one token in
	QCFTSEX                 // full-text search with the compound expression of
)

const (
	QCNEGATE CondOp = 1 << 24 // negation flag
	QCNOIDX  CondOp = 1 << 25 // no index flag
)

// --------------------------------------------------------------------------
// Query order types (setorder)
// --------------------------------------------------------------------------

// OrderType is the sort order of a query.
type OrderType int32

const (
	QOSTRASC  OrderType = iota // string ascending
	QOSTRDESC                  // string descending
	QONUMASC                   // number ascending
	QONUMDESC                  // number descending
)

// --------------------------------------------------------------------------
// Set operation types (metasearch)
// --------------------------------------------------------------------------

// SetOp combines the results of several queries.
type SetOp int32

const (
	MSUNION SetOp = iota // union
	MSISECT              // intersection
	MSDIFF               // difference
)
