// Package store defines the persistence interfaces consumed by the scheduling
// core, together with the shared error taxonomy and transaction helper. The
// concrete PostgreSQL implementations live in internal/platform/postgres.
package store
