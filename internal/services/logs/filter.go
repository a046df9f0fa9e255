package logs

import (
	"strings"

	"github.com/hashicorp/go-bexpr"
	lru "github.com/hashicorp/golang-lru/v2"
)

// compiledFilters caches go-bexpr evaluators by expression.
type compiledFilters struct {
	cache *lru.Cache[string, *bexpr.Evaluator]
}

func newCompiledFilters(size int) *compiledFilters {
	cache, err := lru.New[string, *bexpr.Evaluator](size)
	if err != nil {
		// only fails for a non-positive size
		panic(err)
	}
	return &compiledFilters{cache: cache}
}

// compile returns the cached evaluator for expr, or nil for an empty expression.
func (c *compiledFilters) compile(expr string) (*bexpr.Evaluator, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, nil
	}
	if ev, ok := c.cache.Get(expr); ok {
		return ev, nil
	}
	ev, err := bexpr.CreateEvaluator(expr)
	if err != nil {
		return nil, err
	}
	c.cache.Add(expr, ev)
	return ev, nil
}

// matches evaluates ev against a decoded log line. A nil evaluator matches
// everything; evaluation errors (such as a missing field) do not match.
func matches(ev *bexpr.Evaluator, fields map[string]any) bool {
	if ev == nil {
		return true
	}
	ok, err := ev.Evaluate(fields)
	if err != nil {
		return false
	}
	return ok
}
