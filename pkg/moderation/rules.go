// Package moderation classifies user-submitted text before it is ever sent:
// banned-term matching, spam-pattern matching over a sanitized copy, and
// structural UGC validation per content kind. It is purely computational;
// callers map error codes to localized messages via the catalog in this
// package.
package moderation

import (
	"fmt"
	"time"
)

// RuleContext carries the inputs a custom moderation rule evaluates against.
type RuleContext struct {
	// Text is the raw submitted text.
	Text string
	// Sanitized is the copy with image embeds and media URLs stripped.
	Sanitized string
	// Kind is the content kind under validation.
	Kind Kind
	// Length is the plain-text rune count.
	Length int
	// Now defaults to the wall clock when nil.
	Now *time.Time
	// Metadata carries optional operator-supplied context.
	Metadata map[string]any
}

func (ctx RuleContext) withDefaultNow() RuleContext {
	if ctx.Now != nil {
		return ctx
	}
	now := time.Now()
	ctx.Now = &now
	return ctx
}

func (ctx RuleContext) timestamp() time.Time {
	ctx = ctx.withDefaultNow()
	return *ctx.Now
}

func (ctx RuleContext) withDefaultMaps() RuleContext {
	if ctx.Metadata == nil {
		ctx.Metadata = map[string]any{}
	}
	return ctx
}

func (ctx RuleContext) withDefaults() RuleContext {
	return ctx.withDefaultNow().withDefaultMaps()
}

// RuleEngine executes rule expressions against a context. A truthy result
// flags the text.
type RuleEngine interface {
	Evaluate(ctx RuleContext, expr string) (any, error)
	Compile(expr string) (CompiledRule, error)
}

// CompiledRule represents a reusable rule program.
type CompiledRule interface {
	Evaluate(ctx RuleContext) (any, error)
}

// ProgramCache stores compiled rule programs keyed by expression strings.
type ProgramCache interface {
	Get(key string) (any, bool)
	Set(key string, value any)
}

// Truthy interprets a rule result: booleans as-is, non-empty strings,
// non-zero numbers.
func Truthy(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return v != ""
	case int:
		return v != 0
	case int64:
		return v != 0
	case uint64:
		return v != 0
	case float64:
		return v != 0
	default:
		return true
	}
}

func engineName(e RuleEngine) string {
	if e == nil {
		return "unknown"
	}
	switch fmt.Sprintf("%T", e) {
	case "*moderation.exprEngine":
		return "expr"
	case "*moderation.celEngine":
		return "cel"
	case "*moderation.jsEngine":
		return "js"
	default:
		return "custom"
	}
}
