// Package postgres provides PostgreSQL-backed implementations of the data
// storage interfaces defined in the internal/store package. It handles query
// execution, error mapping, and the translation between domain entities and
// database rows for notifications and project membership lookups.
package postgres
