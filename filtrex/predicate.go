package filtrex

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Predicate is a compiled expression. It holds no mutable state and may be
// evaluated from many goroutines at once.
type Predicate struct {
	source string
	root   Node
	eval   evalFn
	logger *slog.Logger
}

// Source returns the expression text the predicate was compiled from.
func (p *Predicate) Source() string { return p.source }

// AST returns the parsed tree.
func (p *Predicate) AST() Node { return p.root }

func (p *Predicate) String() string { return p.root.String() }

// Eval evaluates the expression against record, which is converted with
// FromGo. Failures, including panics raised by user supplied functions,
// are returned as the error.
func (p *Predicate) Eval(record any) (result Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = NewNil()
			err = fmt.Errorf("filtrex: evaluation panicked: %v", r)
		}
	}()

	data, err := FromGo(record)
	if err != nil {
		return NewNil(), err
	}
	return p.eval(data)
}

// Match evaluates the expression and requires a boolean result.
func (p *Predicate) Match(record any) (bool, error) {
	v, err := p.Eval(record)
	if err != nil {
		return false, err
	}
	return coerceBoolean(v)
}

// Result is the outcome for one record of a batch.
type Result struct {
	Index int
	Value Value
	Err   error
}

// EvalAll evaluates the predicate against every record using at most
// parallelism goroutines (GOMAXPROCS when parallelism <= 0). A record that
// fails only sets its own Result.Err; the returned error is non-nil only
// when ctx ends before the batch completes.
func (p *Predicate) EvalAll(ctx context.Context, records []any, parallelism int) ([]Result, error) {
	if parallelism <= 0 {
		parallelism = runtime.GOMAXPROCS(0)
	}
	results := make([]Result, len(records))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)
	for i, record := range records {
		if err := gctx.Err(); err != nil {
			g.Go(func() error { return err })
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			v, err := p.Eval(record)
			results[i] = Result{Index: i, Value: v, Err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}

	failures := 0
	for _, r := range results {
		if r.Err != nil {
			failures++
		}
	}
	p.logger.Debug("batch evaluated",
		slog.Int("records", len(records)),
		slog.Int("failures", failures),
		slog.Int("parallelism", parallelism),
	)
	return results, nil
}
