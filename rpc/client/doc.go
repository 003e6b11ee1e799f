// Package client implements the clients of the remote key/value and tabular
// database. Both clients run every command through a pipeline over a single
// connection, so calls from many goroutines are serialized in call order.
//
// Key Components:
//
//   - NewHash: Creates the client of a plain key/value database (put, get,
//     mget, addint, fwmkeys, iteration, ...).
//
//   - NewTable: Creates the client of a tabular database. Records have a
//     primary key and named columns; searches are built with the query package.
//
// Usage Example:
//
//	config := common.ClientConfig{
//	  TimeoutSecond: 5,
//	  Transport: common.ClientTransportConfig{Endpoint: "localhost:1978"},
//	}
//
//	db, err := client.NewHash(config, tcp.NewTCPClientTransport())
//	if err != nil {
//	  return err
//	}
//	defer db.Close()
//
//	_ = db.Put(ctx, "mykey", []byte("myvalue"))
//	value, err := db.Get(ctx, "mykey")
//	if errors.Is(err, common.ErrNoRecord) {
//	  // not found
//	}
//
// Searching a table:
//
//	q := query.New()
//	_ = q.AddCond("age", common.QCNUMGE, "18")
//	q.SetLimit(10, 0)
//	rows, hint, err := table.SearchGet(ctx, q, "name", "age")
//
// Errors:
//
//	Every error carries a common.Code. Arguments are validated before anything
//	is sent; an invalid call fails with InvalidOperation and writes no bytes.
package client
