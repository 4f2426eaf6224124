// Package schemas provides embedded SQL migration files.
package schemas

import "embed"

// Migrations contains all SQL migration files. Every statement is idempotent.
//
//go:embed migrations/*.sql
var Migrations embed.FS
