// Package repository provides SQLite-backed persistence for all domain
// types. Every method takes a context and returns domain errors only at
// the service layer; here plain errors (including sql.ErrNoRows) flow up.
package repository

import (
	"database/sql"
)

// Queries wraps a database handle and exposes one method per query.
type Queries struct {
	db *sql.DB
}

// New creates a Queries instance backed by db.
func New(db *sql.DB) *Queries {
	return &Queries{db: db}
}
