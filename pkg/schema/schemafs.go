// Package schema validates JSON reports against the embedded result schema.
package schema

import "embed"

// FS contains the embedded result JSON schema.
//
//go:embed result-schema.json
var FS embed.FS

// SchemaFile is the name of the result schema inside FS.
const SchemaFile = "result-schema.json"
