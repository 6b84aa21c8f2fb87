package quality

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/Sumatoshi-tech/cyclocalc/pkg/syntax"
)

var (
	snakeCase = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)
	capWords  = regexp.MustCompile(`^[A-Z][a-zA-Z0-9]*$`)
)

// NamingReport is the result of the naming convention check.
type NamingReport struct {
	Checked int
	Issues  []string
}

// Ratio returns issues per checked name, or 0 when nothing was checked.
func (r NamingReport) Ratio() float64 {
	return ratio(len(r.Issues), r.Checked)
}

// NamingIssues checks function, parameter and variable names against snake_case
// and class names against CapWords. Variables are the distinct stored names of
// the file, ignoring `_` and dunder names.
func NamingIssues(root *syntax.Node) NamingReport {
	var (
		report NamingReport
		params []string
	)

	stored := map[string]struct{}{}

	syntax.Walk(root, func(n *syntax.Node) bool {
		switch syntax.KindOf(n) {
		case syntax.KindFunction:
			report.check(n.Name, "function", snakeCase, "snake_case")

			for _, child := range n.Children {
				if syntax.KindOf(child) == syntax.KindParameter {
					params = append(params, child.Name)
				}
			}
		case syntax.KindClass:
			report.check(n.Name, "class", capWords, "CapWords")
		case syntax.KindName:
			if n.Ctx == syntax.CtxStore && !ignoredVariable(n.Name) {
				stored[n.Name] = struct{}{}
			}
		default:
		}

		return true
	})

	for _, name := range params {
		report.check(name, "parameter", snakeCase, "snake_case")
	}

	variables := make([]string, 0, len(stored))
	for name := range stored {
		variables = append(variables, name)
	}

	sort.Strings(variables)

	for _, name := range variables {
		report.check(name, "variable", snakeCase, "snake_case")
	}

	return report
}

func (r *NamingReport) check(name, what string, pattern *regexp.Regexp, convention string) {
	if name == "" {
		return
	}

	r.Checked++

	if !pattern.MatchString(name) {
		r.Issues = append(r.Issues, fmt.Sprintf("%s name not %s: %s", what, convention, name))
	}
}

func ignoredVariable(name string) bool {
	return name == "" || name == "_" || (len(name) > 4 && strings.HasPrefix(name, "__") && strings.HasSuffix(name, "__"))
}
