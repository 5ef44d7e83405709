package analyzer

import (
	"sort"
	"unicode"

	"github.com/funvibe/anonsum/internal/ast"
	"github.com/funvibe/anonsum/internal/diagnostics"
)

// isValueName checks if a name follows value naming convention (starts with lowercase or _)
func isValueName(name string) bool {
	if len(name) == 0 {
		return false
	}
	first := rune(name[0])
	return unicode.IsLower(first) || first == '_'
}

// isTypeName checks if a name follows type naming convention (starts with uppercase)
func isTypeName(name string) bool {
	if len(name) == 0 {
		return false
	}
	return unicode.IsUpper(rune(name[0]))
}

// checkValueName validates that a name follows value naming convention
// and reports an error if not
func (w *walker) checkValueName(name *ast.Identifier) bool {
	if !isValueName(name.Value) {
		w.addError(diagnostics.NewError(diagnostics.ErrA003, name.Token,
			"value '%s' must start with a lowercase letter or underscore", name.Value))
		return false
	}
	return true
}

// checkTypeName validates that a name follows type naming convention
// and reports an error if not
func (w *walker) checkTypeName(name *ast.Identifier) bool {
	if !isTypeName(name.Value) {
		w.addError(diagnostics.NewError(diagnostics.ErrA003, name.Token,
			"type '%s' must start with an uppercase letter", name.Value))
		return false
	}
	return true
}

// findSimilarNames returns the candidates within maxDist edits of name,
// closest first.
func findSimilarNames(name string, candidates []string, maxDist int) []string {
	type scored struct {
		name string
		dist int
	}
	var best []scored
	for _, c := range candidates {
		if c == name {
			continue
		}
		if d := editDistance(name, c); d <= maxDist {
			best = append(best, scored{c, d})
		}
	}
	sort.SliceStable(best, func(i, j int) bool { return best[i].dist < best[j].dist })
	out := make([]string, len(best))
	for i, s := range best {
		out[i] = s.name
	}
	return out
}

func editDistance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	cur := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		cur[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(rb)]
}
