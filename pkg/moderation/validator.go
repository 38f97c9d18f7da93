package moderation

import (
	"regexp"
	"time"
	"unicode/utf8"
)

// Kind identifies the content type being validated. Limits differ per kind.
type Kind string

const (
	KindAnswer  Kind = "answer"
	KindComment Kind = "comment"
	KindReply   Kind = "reply"
)

// Code identifies a structural validation failure.
type Code string

const (
	CodeRequired   Code = "UGC_REQUIRED"
	CodeTooShort   Code = "UGC_TOO_SHORT"
	CodeTooLong    Code = "UGC_TOO_LONG"
	CodeLowQuality Code = "UGC_LOW_QUALITY"
)

// Limits bound the plain-text rune count for a kind.
type Limits struct {
	Min int
	Max int
}

var defaultLimits = map[Kind]Limits{
	KindAnswer:  {Min: 10, Max: 20000},
	KindComment: {Min: 2, Max: 2000},
	KindReply:   {Min: 2, Max: 2000},
}

// Result is the outcome of the structural check.
type Result struct {
	OK   bool
	Code Code
}

// Report aggregates every classification for one piece of text.
type Report struct {
	BannedTermMatch bool
	SpamMatch       bool
	RuleMatches     []string
	UGC             Result
	Length          int
}

// Allowed reports whether the text may be submitted.
func (r Report) Allowed() bool {
	return !r.BannedTermMatch && !r.SpamMatch && len(r.RuleMatches) == 0 && r.UGC.OK
}

type customRule struct {
	name     string
	expr     string
	compiled CompiledRule
}

// Validator runs banned-term, spam, custom-rule, and structural checks.
// Construct once and share; Validate is safe for concurrent use.
type Validator struct {
	banned []*regexp.Regexp
	spam   []*regexp.Regexp
	limits map[Kind]Limits
	engine RuleEngine
	cache  ProgramCache
	rules  []customRule
	logger RuleLogger
}

// ValidatorOption configures a Validator.
type ValidatorOption func(*Validator)

// WithLimits overrides the structural limits for a kind.
func WithLimits(kind Kind, limits Limits) ValidatorOption {
	return func(v *Validator) {
		v.limits[kind] = limits
	}
}

// WithBannedPatterns replaces the banned-term pattern set.
func WithBannedPatterns(patterns ...*regexp.Regexp) ValidatorOption {
	return func(v *Validator) {
		v.banned = patterns
	}
}

// WithSpamPatterns replaces the spam pattern set.
func WithSpamPatterns(patterns ...*regexp.Regexp) ValidatorOption {
	return func(v *Validator) {
		v.spam = patterns
	}
}

// WithRule registers a named custom rule expression. A truthy result counts
// as a match.
func WithRule(name, expr string) ValidatorOption {
	return func(v *Validator) {
		v.rules = append(v.rules, customRule{name: name, expr: expr})
	}
}

// WithRuleEngine selects the engine custom rules compile with. Defaults to
// the expr engine.
func WithRuleEngine(engine RuleEngine) ValidatorOption {
	return func(v *Validator) {
		v.engine = engine
	}
}

// WithProgramCache wires a compiled-program cache into the default engine.
func WithProgramCache(cache ProgramCache) ValidatorOption {
	return func(v *Validator) {
		v.cache = cache
	}
}

// WithRuleLogger attaches a logger for rule evaluations.
func WithRuleLogger(logger RuleLogger) ValidatorOption {
	return func(v *Validator) {
		if logger == nil {
			v.logger = noopRuleLogger{}
			return
		}
		v.logger = logger
	}
}

// New constructs a Validator. Custom rules compile eagerly; a rule that does
// not compile fails construction.
func New(opts ...ValidatorOption) (*Validator, error) {
	v := &Validator{
		banned: defaultBannedPatterns,
		spam:   defaultSpamPatterns,
		limits: map[Kind]Limits{},
		logger: noopRuleLogger{},
	}
	for kind, limits := range defaultLimits {
		v.limits[kind] = limits
	}
	for _, opt := range opts {
		if opt != nil {
			opt(v)
		}
	}
	if v.engine == nil {
		var engineOpts []ExprEngineOption
		if v.cache != nil {
			engineOpts = append(engineOpts, ExprWithProgramCache(v.cache))
		}
		v.engine = NewExprEngine(engineOpts...)
	}
	for i := range v.rules {
		compiled, err := v.engine.Compile(v.rules[i].expr)
		if err != nil {
			return nil, err
		}
		v.rules[i].compiled = compiled
	}
	return v, nil
}

// Validate classifies text for the given kind.
func (v *Validator) Validate(kind Kind, text string) Report {
	sanitized := Sanitize(text)
	plain := PlainText(text)
	length := utf8.RuneCountInString(plain)

	report := Report{Length: length}
	for _, pattern := range v.banned {
		if pattern.MatchString(text) {
			report.BannedTermMatch = true
			break
		}
	}
	for _, pattern := range v.spam {
		if pattern.MatchString(sanitized) {
			report.SpamMatch = true
			break
		}
	}
	report.RuleMatches = v.runRules(kind, text, sanitized, length)
	report.UGC = v.structural(kind, plain, length)
	return report
}

func (v *Validator) runRules(kind Kind, text, sanitized string, length int) []string {
	if len(v.rules) == 0 {
		return nil
	}
	ctx := RuleContext{
		Text:      text,
		Sanitized: sanitized,
		Kind:      kind,
		Length:    length,
	}
	var matches []string
	for _, rule := range v.rules {
		start := time.Now()
		result, err := rule.compiled.Evaluate(ctx)
		flagged := err == nil && Truthy(result)
		v.logger.LogRule(RuleLogEvent{
			Engine:   engineName(v.engine),
			Rule:     rule.name,
			Expr:     rule.expr,
			Kind:     kind,
			Duration: time.Since(start),
			Flagged:  flagged,
			Err:      err,
		})
		// an erroring rule is skipped, not treated as a match
		if flagged {
			matches = append(matches, rule.name)
		}
	}
	return matches
}

func (v *Validator) structural(kind Kind, plain string, length int) Result {
	limits, ok := v.limits[kind]
	if !ok {
		limits = defaultLimits[KindComment]
	}
	switch {
	case length == 0:
		return Result{Code: CodeRequired}
	case length < limits.Min:
		return Result{Code: CodeTooShort}
	case length > limits.Max:
		return Result{Code: CodeTooLong}
	case singleRepeatedRune(plain):
		return Result{Code: CodeLowQuality}
	}
	return Result{OK: true}
}

func singleRepeatedRune(s string) bool {
	var first rune
	seen := false
	for _, r := range s {
		if !seen {
			first = r
			seen = true
			continue
		}
		if r != first {
			return false
		}
	}
	return seen
}
