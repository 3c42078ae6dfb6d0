// Package postgres provides the PostgreSQL implementations of the store
// interfaces, the mapping from PostgreSQL errors to store errors, and the
// embedded goose schema migrations.
package postgres
