// Package datastore holds helpers shared by the gorm-backed stores.
package datastore

import "gorm.io/gorm"

// ListOptions limits and offsets list queries. A Limit of -1 disables
// the limit entirely.
type ListOptions struct {
	Limit  int
	Offset int
}

// DefaultLimit caps list queries that do not ask for a limit.
const DefaultLimit = 1000

// ParseListOptions sanitizes raw limit and offset values from a request.
func ParseListOptions(limit, offset int) ListOptions {
	if limit == 0 {
		limit = DefaultLimit
	}
	if limit < 0 {
		limit = -1
		offset = 0
	}
	if offset < 0 {
		offset = 0
	}
	return ListOptions{Limit: limit, Offset: offset}
}

// Transaction runs fn inside a database transaction. Sqlite in this
// setup runs on a single connection, so a nested transaction would
// deadlock; fn runs on the plain handle instead.
func Transaction(db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db.Config.Dialector.Name() == "sqlite" {
		return fn(db)
	}

	tx := db.Begin()
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit().Error
}
