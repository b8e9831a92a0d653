package filtrex

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"sync"
)

const (
	defaultMaxSourceBytes = 64 << 10
	defaultMaxDepth       = 256
	maxDepthCeiling       = 1 << 16
)

// Config bounds the resources a single expression may use. Zero values pick
// the defaults; a negative limit disables that check. MaxDepth may not exceed
// 65536.
type Config struct {
	MaxSourceBytes int
	MaxDepth       int
	Logger         *slog.Logger
}

// Engine compiles expressions against a shared grammar and a base function
// table. It is safe for concurrent use.
type Engine struct {
	config  Config
	grammar *grammar
	logger  *slog.Logger

	mu        sync.RWMutex
	functions map[string]Function
}

// NewEngine constructs an Engine with the built-in function table.
func NewEngine(cfg Config) (*Engine, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	if cfg.MaxSourceBytes == 0 {
		cfg.MaxSourceBytes = defaultMaxSourceBytes
	}
	if cfg.MaxDepth == 0 {
		cfg.MaxDepth = defaultMaxDepth
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Engine{
		config:    cfg,
		grammar:   sharedGrammar(),
		logger:    logger,
		functions: defaultFunctions(),
	}, nil
}

func validateConfig(cfg Config) error {
	if cfg.Logger != nil && cfg.Logger.Handler() == nil {
		return fmt.Errorf("filtrex: logger has no handler")
	}
	if cfg.MaxDepth > maxDepthCeiling {
		return fmt.Errorf("filtrex: max depth %d exceeds %d; use a negative value to disable the check", cfg.MaxDepth, maxDepthCeiling)
	}
	return nil
}

// MustNewEngine constructs an Engine or panics if the config is invalid.
func MustNewEngine(cfg Config) *Engine {
	engine, err := NewEngine(cfg)
	if err != nil {
		panic(err)
	}
	return engine
}

var defaultEngine = sync.OnceValue(func() *Engine { return MustNewEngine(Config{}) })

// Compile compiles expr with the default engine.
func Compile(expr string, opts ...Options) (*Predicate, error) {
	return defaultEngine().Compile(expr, opts...)
}

// Parse parses expr with the default engine.
func Parse(expr string) (Node, error) {
	return defaultEngine().Parse(expr)
}

// RegisterFunction adds fn to the engine's function table, replacing any
// function of the same name. Predicates compiled earlier are unaffected.
func (e *Engine) RegisterFunction(name string, fn Function) error {
	if name == "" {
		return typeErrorf("function name must not be empty")
	}
	if fn == nil {
		return typeErrorf("function %s must not be nil", name)
	}
	e.mu.Lock()
	e.functions[name] = fn
	e.mu.Unlock()
	return nil
}

// Functions lists the names in the engine's function table.
func (e *Engine) Functions() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return slices.Sorted(maps.Keys(e.functions))
}

// ConfigSummary describes the effective limits.
func (e *Engine) ConfigSummary() string {
	return fmt.Sprintf("MaxSourceBytes=%d MaxDepth=%d", e.config.MaxSourceBytes, e.config.MaxDepth)
}

// Parse returns the tree for expr without compiling it.
func (e *Engine) Parse(expr string) (Node, error) {
	if limit := e.config.MaxSourceBytes; limit > 0 && len(expr) > limit {
		return nil, &ParseError{
			Pos:     Position{Line: 1, Column: 1},
			Message: fmt.Sprintf("expression is %d bytes, exceeding the limit of %d", len(expr), limit),
		}
	}
	return parseSource(e.grammar, expr, e.config.MaxDepth)
}

// Compile turns expr into a Predicate. At most one Options value may be
// given. The operator and function tables are copied, so later changes to
// opts or to the engine do not affect the result.
func (e *Engine) Compile(expr string, opts ...Options) (*Predicate, error) {
	if len(opts) > 1 {
		return nil, typeErrorf("Too many arguments.")
	}
	var opt Options
	if len(opts) == 1 {
		opt = opts[0]
	}

	ops, defaultMatch, err := operatorTable(opt.Operators)
	if err != nil {
		return nil, err
	}

	e.mu.RLock()
	fns := functionTable(e.functions, opt.ExtraFunctions)
	e.mu.RUnlock()

	root, err := e.Parse(expr)
	if err != nil {
		e.logger.Debug("expression rejected", slog.String("kind", ErrorKind(err)), slog.Any("error", err))
		return nil, err
	}

	gen := &generator{
		ops:          ops,
		fns:          fns,
		prop:         propResolver(opt.CustomProp),
		defaultMatch: defaultMatch,
	}
	eval, err := gen.compile(root)
	if err != nil {
		e.logger.Debug("expression rejected", slog.String("kind", ErrorKind(err)), slog.Any("error", err))
		return nil, err
	}

	e.logger.Debug("expression compiled", slog.Int("bytes", len(expr)), slog.String("canonical", root.String()))
	return &Predicate{source: expr, root: root, eval: eval, logger: e.logger}, nil
}
