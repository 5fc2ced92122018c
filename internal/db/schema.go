package db

import "embed"

// SchemaFiles holds the versioned migrations under schema/.
//
//go:embed schema/*.sql
var SchemaFiles embed.FS
