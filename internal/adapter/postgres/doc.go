// Package postgres is the PostgreSQL record store.
//
// Uses pgx for connection pooling and tern for embedded migrations. The
// emails table is keyed by time-ordered UUIDv7 values, which keeps keyset
// pagination on the primary key stable while rows are being inserted.
package postgres
