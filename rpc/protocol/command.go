package protocol

import (
	"github.com/ValentinKolb/dTT/rpc/common"
)

// Magic is the first byte of every request frame
const Magic byte = 0xC8

// Frame is one complete serialized request. It is never modified after encoding.
type Frame []byte

// --------------------------------------------------------------------------
// Command Descriptor
// --------------------------------------------------------------------------

// Command identifies the request and response layout of one operation.
// Table operations and the query search family are sent as misc calls but keep
// their own descriptor, so the response is interpreted the way the caller expects.
type Command uint8

const (
	CmdUnknown Command = iota

	// plain database commands

	CmdPut       // Store a record, overwrite an existing one
	CmdPutKeep   // Store a new record, keep an existing one
	CmdPutCat    // Concatenate a value at the end of an existing record
	CmdPutShl    // Concatenate a value and shift the record to the left
	CmdPutNR     // Store a record without waiting for a response
	CmdOut       // Remove a record
	CmdGet       // Retrieve a record
	CmdMGet      // Retrieve multiple records
	CmdVSiz      // Get the size of the value of a record
	CmdIterInit  // Initialize the key iterator
	CmdIterNext  // Get the next key of the iterator
	CmdFwmKeys   // Get forward matching keys
	CmdAddInt    // Add an integer to a record
	CmdAddDouble // Add a real number to a record
	CmdExt       // Call a function of the script language extension
	CmdSync      // Synchronize updated contents with the device
	CmdOptimize  // Optimize the storage
	CmdVanish    // Remove all records
	CmdCopy      // Copy the database file
	CmdRestore   // Restore the database with update log
	CmdSetMst    // Set the replication master
	CmdRNum      // Get the number of records
	CmdSize      // Get the size of the database
	CmdStat      // Get the status string of the database
	CmdMisc      // Call a versatile function for miscellaneous operations

	// table operations (sent as misc)

	CmdTablePut     // misc "put"
	CmdTablePutKeep // misc "putkeep"
	CmdTablePutCat  // misc "putcat"
	CmdTableOut     // misc "out"
	CmdTableGet     // misc "get"
	CmdSetIndex     // misc "setindex"
	CmdGenUID       // misc "genuid"
	CmdSearch       // misc "search", terminal "get" without columns
	CmdSearchOut    // misc "search", terminal "out"
	CmdSearchGet    // misc "search", terminal "get" with columns
	CmdSearchCount  // misc "search", terminal "count"
)

// Shape defines how the response of a command is laid out
type Shape uint8

const (
	ShapeNone       Shape = iota // no response at all
	ShapeAck                     // [code:1]
	ShapeCounter                 // [code:1][value:8]
	ShapeInt32                   // [code:1]([value:4])
	ShapeFixedPoint              // [code:1]([integ:8][fract:8])
	ShapeBlob                    // [code:1]([size:4][buf:*])
	ShapeRecords                 // [code:1][rnum:4][{[ksiz:4][vsiz:4][kbuf:*][vbuf:*]}:*]
	ShapeList                    // [code:1][num:4][{[siz:4][buf:*]}:*]
)

// descriptor holds the static properties of a command
type descriptor struct {
	name   string
	opcode byte
	shape  Shape
	fn     string // misc function name for table and search commands
}

var descriptors = [...]descriptor{
	CmdUnknown:      {name: "unknown"},
	CmdPut:          {name: "put", opcode: 0x10, shape: ShapeAck},
	CmdPutKeep:      {name: "putkeep", opcode: 0x11, shape: ShapeAck},
	CmdPutCat:       {name: "putcat", opcode: 0x12, shape: ShapeAck},
	CmdPutShl:       {name: "putshl", opcode: 0x13, shape: ShapeAck},
	CmdPutNR:        {name: "putnr", opcode: 0x18, shape: ShapeNone},
	CmdOut:          {name: "out", opcode: 0x20, shape: ShapeAck},
	CmdGet:          {name: "get", opcode: 0x30, shape: ShapeBlob},
	CmdMGet:         {name: "mget", opcode: 0x31, shape: ShapeRecords},
	CmdVSiz:         {name: "vsiz", opcode: 0x38, shape: ShapeInt32},
	CmdIterInit:     {name: "iterinit", opcode: 0x50, shape: ShapeAck},
	CmdIterNext:     {name: "iternext", opcode: 0x51, shape: ShapeBlob},
	CmdFwmKeys:      {name: "fwmkeys", opcode: 0x58, shape: ShapeList},
	CmdAddInt:       {name: "addint", opcode: 0x60, shape: ShapeInt32},
	CmdAddDouble:    {name: "adddouble", opcode: 0x61, shape: ShapeFixedPoint},
	CmdExt:          {name: "ext", opcode: 0x68, shape: ShapeBlob},
	CmdSync:         {name: "sync", opcode: 0x70, shape: ShapeAck},
	CmdOptimize:     {name: "optimize", opcode: 0x71, shape: ShapeAck},
	CmdVanish:       {name: "vanish", opcode: 0x72, shape: ShapeAck},
	CmdCopy:         {name: "copy", opcode: 0x73, shape: ShapeAck},
	CmdRestore:      {name: "restore", opcode: 0x74, shape: ShapeAck},
	CmdSetMst:       {name: "setmst", opcode: 0x78, shape: ShapeAck},
	CmdRNum:         {name: "rnum", opcode: 0x80, shape: ShapeCounter},
	CmdSize:         {name: "size", opcode: 0x81, shape: ShapeCounter},
	CmdStat:         {name: "stat", opcode: 0x88, shape: ShapeBlob},
	CmdMisc:         {name: "misc", opcode: 0x90, shape: ShapeList},
	CmdTablePut:     {name: "table.put", opcode: 0x90, shape: ShapeList, fn: "put"},
	CmdTablePutKeep: {name: "table.putkeep", opcode: 0x90, shape: ShapeList, fn: "putkeep"},
	CmdTablePutCat:  {name: "table.putcat", opcode: 0x90, shape: ShapeList, fn: "putcat"},
	CmdTableOut:     {name: "table.out", opcode: 0x90, shape: ShapeList, fn: "out"},
	CmdTableGet:     {name: "table.get", opcode: 0x90, shape: ShapeList, fn: "get"},
	CmdSetIndex:     {name: "setindex", opcode: 0x90, shape: ShapeList, fn: "setindex"},
	CmdGenUID:       {name: "genuid", opcode: 0x90, shape: ShapeList, fn: "genuid"},
	CmdSearch:       {name: "search", opcode: 0x90, shape: ShapeList, fn: "search"},
	CmdSearchOut:    {name: "searchout", opcode: 0x90, shape: ShapeList, fn: "search"},
	CmdSearchGet:    {name: "searchget", opcode: 0x90, shape: ShapeList, fn: "search"},
	CmdSearchCount:  {name: "searchcount", opcode: 0x90, shape: ShapeList, fn: "search"},
}

func (c Command) desc() descriptor {
	if int(c) >= len(descriptors) {
		return descriptors[CmdUnknown]
	}
	return descriptors[c]
}

// String returns the name of the command
func (c Command) String() string {
	return c.desc().name
}

// Opcode returns the byte following the magic in the request frame
func (c Command) Opcode() byte {
	return c.desc().opcode
}

// Shape returns the response layout of the command
func (c Command) Shape() Shape {
	return c.desc().shape
}

// ExpectsResponse reports whether the server answers the command at all
func (c Command) ExpectsResponse() bool {
	return c.Shape() != ShapeNone
}

// MiscName returns the misc function name of table and search commands,
// an empty string for every other command
func (c Command) MiscName() string {
	return c.desc().fn
}

// IsMisc reports whether the command travels as a misc call
func (c Command) IsMisc() bool {
	return c.Opcode() == 0x90
}

// IsSearch reports whether the command belongs to the query search family
func (c Command) IsSearch() bool {
	switch c {
	case CmdSearch, CmdSearchOut, CmdSearchGet, CmdSearchCount:
		return true
	default:
		return false
	}
}

// Valid reports whether c is a known command
func (c Command) Valid() bool {
	return c > CmdUnknown && int(c) < len(descriptors)
}

// StatusError translates a non-zero status byte into an error of the
// common taxonomy. Zero yields nil.
//
// The server answers most failures with status 1; its meaning depends on the
// command (a missing record for reads and removals, an existing record for
// putkeep). Status values 2 to 7 carry the taxonomy code directly.
func (c Command) StatusError(status uint8) error {
	if status == 0 {
		return nil
	}
	if status >= uint8(common.CodeHostNotFound) && status <= uint8(common.CodeNoRecordFound) {
		return common.NewError(common.Code(status), c.String())
	}
	if status == 1 {
		switch c {
		case CmdPutKeep, CmdTablePutKeep:
			return common.NewError(common.CodeExistingRecord, c.String())
		case CmdOut, CmdGet, CmdVSiz, CmdIterNext, CmdAddInt, CmdAddDouble, CmdTableOut, CmdTableGet:
			return common.NewError(common.CodeNoRecordFound, c.String())
		}
	}
	return common.NewError(common.CodeMiscellaneous, c.String())
}
