// Package filter selects enriched rows with CEL expressions over the export
// columns, e.g. row.JURISDICTION == "CSLT" && row.IPESScore > 725.
package filter

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/stwalsh4118/devrights/internal/export"
	"github.com/stwalsh4118/devrights/internal/models"
)

// ErrInvalidExpression is returned when an expression does not compile.
var ErrInvalidExpression = errors.New("invalid filter expression")

// Evaluator compiles and caches row filters.
type Evaluator struct {
	env   *cel.Env
	cache map[string]cel.Program
	mu    sync.RWMutex
}

// NewEvaluator creates an evaluator with a single variable, row, holding
// the export record of one enriched transaction.
func NewEvaluator() (*Evaluator, error) {
	env, err := cel.NewEnv(
		cel.Variable("row", cel.MapType(cel.StringType, cel.DynType)),
		cel.CrossTypeNumericComparisons(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL env: %w", err)
	}

	return &Evaluator{
		env:   env,
		cache: make(map[string]cel.Program),
	}, nil
}

// Compile checks an expression and caches its program.
func (e *Evaluator) Compile(expr string) (cel.Program, error) {
	expr = strings.TrimSpace(expr)

	e.mu.RLock()
	prg, exists := e.cache[expr]
	e.mu.RUnlock()
	if exists {
		return prg, nil
	}

	ast, issues := e.env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidExpression, issues.Err())
	}

	prg, err := e.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidExpression, err)
	}

	e.mu.Lock()
	e.cache[expr] = prg
	e.mu.Unlock()

	return prg, nil
}

// Match evaluates expr against one record.
func (e *Evaluator) Match(expr string, record map[string]any) (bool, error) {
	prg, err := e.Compile(expr)
	if err != nil {
		return false, err
	}
	return eval(prg, record)
}

// Apply returns the rows matching expr, in order. A blank expression keeps
// every row. Filtering happens on finished rows, so counterpart fields of
// the kept rows still reflect the whole batch.
func (e *Evaluator) Apply(expr string, rows []models.EnrichedTransaction) ([]models.EnrichedTransaction, error) {
	if strings.TrimSpace(expr) == "" {
		return rows, nil
	}

	prg, err := e.Compile(expr)
	if err != nil {
		return nil, err
	}

	kept := make([]models.EnrichedTransaction, 0, len(rows))
	for i := range rows {
		ok, err := eval(prg, export.Record(&rows[i]))
		if err != nil {
			return nil, fmt.Errorf("row %d (APN %s): %w", i+1, rows[i].OriginalAPN, err)
		}
		if ok {
			kept = append(kept, rows[i])
		}
	}
	return kept, nil
}

// CacheSize returns the number of cached expressions.
func (e *Evaluator) CacheSize() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.cache)
}

func eval(prg cel.Program, record map[string]any) (bool, error) {
	out, _, err := prg.Eval(map[string]any{"row": record})
	if err != nil {
		return false, fmt.Errorf("CEL evaluation error: %w", err)
	}

	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("CEL expression did not return boolean, got %T", out.Value())
	}
	return result, nil
}
