package moderation

import (
	"fmt"

	celgo "github.com/google/cel-go/cel"
)

// CELEngineOption configures the CEL rule engine.
type CELEngineOption func(*celEngine)

// CELWithProgramCache wires a ProgramCache into the CEL engine.
func CELWithProgramCache(cache ProgramCache) CELEngineOption {
	return func(e *celEngine) {
		e.cache = cache
	}
}

type celProgram struct {
	env     *celgo.Env
	program celgo.Program
}

type celEngine struct {
	cache ProgramCache
}

// NewCELEngine constructs a RuleEngine backed by cel-go.
func NewCELEngine(opts ...CELEngineOption) RuleEngine {
	e := &celEngine{}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

func (e *celEngine) Evaluate(ctx RuleContext, expression string) (any, error) {
	if expression == "" {
		return nil, fmt.Errorf("expression must not be empty")
	}
	ctx = ctx.withDefaultNow().withDefaultMaps()
	program, err := e.loadOrCompile(expression)
	if err != nil {
		return nil, err
	}
	out, _, err := program.program.Eval(e.activation(ctx))
	if err != nil {
		return nil, err
	}
	return out.Value(), nil
}

func (e *celEngine) Compile(expression string) (CompiledRule, error) {
	if expression == "" {
		return nil, fmt.Errorf("expression must not be empty")
	}
	return &celCompiledRule{
		engine:     e,
		expression: expression,
	}, nil
}

func (e *celEngine) loadOrCompile(expression string) (*celProgram, error) {
	if e.cache != nil {
		if cached, ok := e.cache.Get(expression); ok {
			if program, ok := cached.(*celProgram); ok {
				return program, nil
			}
		}
	}

	env, err := buildCELEnv()
	if err != nil {
		return nil, err
	}
	ast, issues := env.Parse(expression)
	if issues != nil && issues.Err() != nil {
		return nil, issues.Err()
	}
	checked, issues := env.Check(ast)
	if issues != nil && issues.Err() != nil {
		return nil, issues.Err()
	}
	prg, err := env.Program(checked)
	if err != nil {
		return nil, err
	}

	bundle := &celProgram{
		env:     env,
		program: prg,
	}
	if e.cache != nil {
		e.cache.Set(expression, bundle)
	}
	return bundle, nil
}

func buildCELEnv() (*celgo.Env, error) {
	return celgo.NewEnv(
		celgo.Variable("text", celgo.StringType),
		celgo.Variable("sanitized", celgo.StringType),
		celgo.Variable("kind", celgo.StringType),
		celgo.Variable("length", celgo.IntType),
		celgo.Variable("now", celgo.TimestampType),
		celgo.Variable("metadata", celgo.DynType),
	)
}

func (e *celEngine) activation(ctx RuleContext) map[string]any {
	return map[string]any{
		"text":      ctx.Text,
		"sanitized": ctx.Sanitized,
		"kind":      string(ctx.Kind),
		"length":    int64(ctx.Length),
		"now":       ctx.timestamp(),
		"metadata":  ctx.Metadata,
	}
}

type celCompiledRule struct {
	engine     *celEngine
	expression string
}

func (r *celCompiledRule) Evaluate(ctx RuleContext) (any, error) {
	if r.engine == nil {
		return nil, fmt.Errorf("cel compiled rule missing engine")
	}
	ctx = ctx.withDefaultNow().withDefaultMaps()
	program, err := r.engine.loadOrCompile(r.expression)
	if err != nil {
		return nil, err
	}
	out, _, err := program.program.Eval(r.engine.activation(ctx))
	if err != nil {
		return nil, err
	}
	return out.Value(), nil
}
