// Package postgres provides PostgreSQL-specific implementations for the data
// storage interfaces defined in the internal/store package, the mapping of
// driver errors onto the store error taxonomy, and the embedded schema
// migrations applied by goose.
package postgres
