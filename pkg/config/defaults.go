package config

import "github.com/Sumatoshi-tech/cyclocalc/pkg/render"

// Analysis defaults.
const (
	DefaultLongLineLimit = 79
	DefaultWorkers       = 0
	DefaultMaxFileSize   = "2MiB"
	DefaultTopN          = 10
	DefaultMinCC         = 1
)

// Discovery defaults.
var DefaultExcludeDirs = []string{".git", "__pycache__", ".venv", "venv", "node_modules", ".tox", ".mypy_cache"}

const DefaultSkipVendored = true

// Output defaults.
const (
	FormatText = render.FormatText
	FormatJSON = render.FormatJSON
	FormatYAML = render.FormatYAML
	FormatHTML = render.FormatHTML

	DefaultFormat = FormatText
)

// Observability defaults.
const DefaultLogLevel = "info"
