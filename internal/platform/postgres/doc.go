// Package postgres provides PostgreSQL implementations of the store
// interfaces. Each store takes a store.DBTX so it can run against either the
// shared connection pool or a caller-managed transaction, and each offers a
// WithTx method producing a transaction-bound copy for use with
// store.RunInTransaction.
package postgres
