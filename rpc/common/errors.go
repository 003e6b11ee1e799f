package common

import (
	"fmt"
)

// --------------------------------------------------------------------------
// Error Codes
// --------------------------------------------------------------------------

// Code is the closed set of outcomes a command can have. The numeric values
// match the status codes used by the remote database.
type Code int

const (
	CodeSuccess           Code = 0    // Command executed successfully
	CodeInvalidOperation  Code = 1    // Malformed call or no active connection
	CodeHostNotFound      Code = 2    // Endpoint could not be resolved
	CodeConnectionRefused Code = 3    // Endpoint refused the connection
	CodeSendError         Code = 4    // Writing to the transport failed
	CodeReceiveError      Code = 5    // Reading from the transport failed or the response was malformed
	CodeExistingRecord    Code = 6    // putkeep found a key already present
	CodeNoRecordFound     Code = 7    // Target record does not exist
	CodeMiscellaneous     Code = 9999 // Server reported a failure without finer classification
)

// String returns the human readable message of the code
func (c Code) String() string {
	switch c {
	case CodeSuccess:
		return "success"
	case CodeInvalidOperation:
		return "invalid operation"
	case CodeHostNotFound:
		return "host not found"
	case CodeConnectionRefused:
		return "connection refused"
	case CodeSendError:
		return "send error"
	case CodeReceiveError:
		return "recv error"
	case CodeExistingRecord:
		return "existing record"
	case CodeNoRecordFound:
		return "no record found"
	case CodeMiscellaneous:
		return "miscellaneous error"
	default:
		return "unknown"
	}
}

// --------------------------------------------------------------------------
// Custom Error Type
// --------------------------------------------------------------------------

// Error wraps a Code, a message and optionally the underlying cause.
// Two *Error values are considered equal by errors.Is when their codes match,
// so callers can test against the sentinels below.
type Error struct {
	Code Code   // The error code
	Msg  string // Additional context, may be empty
	Err  error  // Underlying cause, may be nil
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e.Msg != "" && e.Err != nil:
		return fmt.Sprintf("tyrant error (%s): %s: %v", e.Code, e.Msg, e.Err)
	case e.Msg != "":
		return fmt.Sprintf("tyrant error (%s): %s", e.Code, e.Msg)
	case e.Err != nil:
		return fmt.Sprintf("tyrant error (%s): %v", e.Code, e.Err)
	default:
		return fmt.Sprintf("tyrant error (%s)", e.Code)
	}
}

// Unwrap returns the underlying cause
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error with the same code
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// NewError creates a new Error with the given code and message.
func NewError(code Code, msg string) *Error {
	return &Error{Code: code, Msg: msg}
}

// WrapError creates a new Error with the given code that wraps err.
func WrapError(code Code, err error, msg string) *Error {
	return &Error{Code: code, Msg: msg, Err: err}
}

// CodeOf returns the Code carried by err. Errors that are not (and do not wrap)
// an *Error are reported as CodeMiscellaneous, a nil error as CodeSuccess.
func CodeOf(err error) Code {
	if err == nil {
		return CodeSuccess
	}
	for e := err; e != nil; {
		if te, ok := e.(*Error); ok {
			return te.Code
		}
		u, ok := e.(interface{ Unwrap() error })
		if !ok {
			break
		}
		e = u.Unwrap()
	}
	return CodeMiscellaneous
}

// --------------------------------------------------------------------------
// Sentinels (use with errors.Is)
// --------------------------------------------------------------------------

var (
	ErrInvalid  = &Error{Code: CodeInvalidOperation}
	ErrNoHost   = &Error{Code: CodeHostNotFound}
	ErrRefused  = &Error{Code: CodeConnectionRefused}
	ErrSend     = &Error{Code: CodeSendError}
	ErrRecv     = &Error{Code: CodeReceiveError}
	ErrKeep     = &Error{Code: CodeExistingRecord}
	ErrNoRecord = &Error{Code: CodeNoRecordFound}
	ErrMisc     = &Error{Code: CodeMiscellaneous}
)
