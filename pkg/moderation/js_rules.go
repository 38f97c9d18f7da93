//go:build js_eval

package moderation

import (
	"fmt"

	"github.com/dop251/goja"
)

type jsEngine struct {
	cache ProgramCache
}

// NewJSEngine constructs a RuleEngine backed by goja.
func NewJSEngine(opts ...JSEngineOption) RuleEngine {
	cfg := applyJSEngineOptions(opts)
	return &jsEngine{
		cache: cfg.cache,
	}
}

func (e *jsEngine) Evaluate(ctx RuleContext, expression string) (any, error) {
	if expression == "" {
		return nil, fmt.Errorf("expression must not be empty")
	}
	ctx = ctx.withDefaults()
	if e.cache == nil {
		return e.run(ctx, expression, nil)
	}
	program, err := e.loadOrCompile(expression)
	if err != nil {
		return nil, err
	}
	return e.run(ctx, expression, program)
}

func (e *jsEngine) Compile(expression string) (CompiledRule, error) {
	if expression == "" {
		return nil, fmt.Errorf("expression must not be empty")
	}
	program, err := e.loadOrCompile(expression)
	if err != nil {
		return nil, err
	}
	return &jsCompiledRule{
		engine:     e,
		expression: expression,
		program:    program,
	}, nil
}

func (e *jsEngine) loadOrCompile(expression string) (*goja.Program, error) {
	if e.cache != nil {
		if cached, ok := e.cache.Get(expression); ok {
			if program, ok := cached.(*goja.Program); ok {
				return program, nil
			}
		}
	}
	program, err := goja.Compile("", e.wrapExpression(expression), false)
	if err != nil {
		return nil, err
	}
	if e.cache != nil {
		e.cache.Set(expression, program)
	}
	return program, nil
}

func (e *jsEngine) run(ctx RuleContext, expression string, program *goja.Program) (any, error) {
	vm := goja.New()
	e.injectContext(vm, ctx)
	if program != nil {
		value, err := vm.RunProgram(program)
		if err != nil {
			return nil, err
		}
		return value.Export(), nil
	}
	value, err := vm.RunString(e.wrapExpression(expression))
	if err != nil {
		return nil, err
	}
	return value.Export(), nil
}

func (e *jsEngine) injectContext(vm *goja.Runtime, ctx RuleContext) {
	vm.Set("text", ctx.Text)
	vm.Set("sanitized", ctx.Sanitized)
	vm.Set("kind", string(ctx.Kind))
	vm.Set("length", ctx.Length)
	vm.Set("now", ctx.timestamp())
	vm.Set("metadata", ctx.Metadata)
}

func (e *jsEngine) wrapExpression(expression string) string {
	return fmt.Sprintf("(function(){ return (%s); })()", expression)
}

type jsCompiledRule struct {
	engine     *jsEngine
	expression string
	program    *goja.Program
}

func (r *jsCompiledRule) Evaluate(ctx RuleContext) (any, error) {
	if r.engine == nil {
		return nil, fmt.Errorf("js compiled rule missing engine")
	}
	ctx = ctx.withDefaults()
	return r.engine.run(ctx, r.expression, r.program)
}

func jsEngineAvailable() bool {
	return true
}
