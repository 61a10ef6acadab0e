package migrations

import (
	_ "embed"
)

//go:embed 001_initial_schema.sql
var initialSchema string

// GetInitialSchema returns the embedded database schema.
func GetInitialSchema() string {
	return initialSchema
}
