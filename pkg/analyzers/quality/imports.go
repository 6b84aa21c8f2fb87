package quality

import (
	"sort"

	"github.com/Sumatoshi-tech/cyclocalc/pkg/syntax"
)

// ImportReport lists import bindings that are never referenced and the modules
// imported with a wildcard, whose usage cannot be resolved statically.
type ImportReport struct {
	Unused    []string
	Wildcards []string
}

// UnusedImports collects every name bound by an import at any scope and reports
// those never read anywhere in the file. Stores, attribute names and keyword
// argument names are not reads.
func UnusedImports(root *syntax.Node) ImportReport {
	bound := map[string]struct{}{}
	used := map[string]struct{}{}
	seenWildcard := map[string]struct{}{}

	var report ImportReport

	syntax.Walk(root, func(n *syntax.Node) bool {
		switch syntax.KindOf(n) {
		case syntax.KindImport, syntax.KindImportFrom:
			if name, ok := syntax.BoundName(n); ok {
				bound[name] = struct{}{}
			}
		case syntax.KindWildcardImport:
			if _, dup := seenWildcard[n.Module]; !dup {
				seenWildcard[n.Module] = struct{}{}
				report.Wildcards = append(report.Wildcards, n.Module)
			}
		case syntax.KindName:
			if n.Ctx == syntax.CtxLoad {
				used[n.Name] = struct{}{}
			}
		default:
		}

		return true
	})

	for name := range bound {
		if _, ok := used[name]; !ok {
			report.Unused = append(report.Unused, name)
		}
	}

	sort.Strings(report.Unused)

	return report
}
