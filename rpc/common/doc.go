// Package common provides the types shared by every layer of the Tokyo Tyrant
// client: configuration, logging, the error taxonomy and the option constants
// of the remote protocol.
//
// Key Components:
//
//   - Code / Error: The closed set of command outcomes (success, invalid operation,
//     host not found, connection refused, send error, recv error, existing record,
//     no record found, miscellaneous). Error values match by code with errors.Is,
//     so callers can write errors.Is(err, common.ErrNoRecord).
//
//   - Options: Immutable constants for command options (MONOULOG, XOLCKREC, ...),
//     table index types, query operators, order types and set operations.
//
//   - ClientConfig: Connection parameters for one server endpoint.
//
//   - Logger: Custom logging implementation built on Dragonboat's logger package
//     with the format "LEVEL | name | message".
package common
