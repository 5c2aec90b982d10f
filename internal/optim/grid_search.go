// Package optim sweeps case parameters over a grid and ranks the runs by a
// controller metric.
package optim

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/dropsim/internal/experiment"
)

// Trial is one grid point and its outcome. Err is set when the case failed
// to build or diverged; Value is then NaN.
type Trial struct {
	Params map[string]float64
	Value  float64
	Err    error
}

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) (*GridSearch, error) {
	if len(params) != len(ranges) {
		return nil, fmt.Errorf("optim: %d parameters but %d ranges", len(params), len(ranges))
	}
	for i, r := range ranges {
		if len(r) == 0 {
			return nil, fmt.Errorf("optim: empty range for %s", params[i])
		}
	}
	return &GridSearch{paramNames: params, ranges: ranges}, nil
}

// Size is the number of grid points.
func (g *GridSearch) Size() int {
	n := 1
	for _, r := range g.ranges {
		n *= len(r)
	}
	return n
}

// Search builds and runs one case per grid point and returns every trial
// sorted by increasing metric, failed trials last. Cancellation stops the
// sweep and returns the trials finished so far.
func (g *GridSearch) Search(
	ctx context.Context,
	build func(params map[string]float64) (*experiment.Case, error),
	metricName string,
) ([]Trial, error) {
	var trials []Trial
	err := g.searchRecursive(ctx, 0, make(map[string]float64), func(params map[string]float64) error {
		t := Trial{Params: params, Value: math.NaN()}
		c, err := build(params)
		if err != nil {
			t.Err = err
			trials = append(trials, t)
			return nil
		}
		res, err := c.Controller.Run(ctx)
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		if err != nil {
			t.Err = err
		} else if v, ok := res.Metrics[metricName]; ok {
			t.Value = v
		} else {
			t.Err = fmt.Errorf("optim: unknown metric %s", metricName)
		}
		trials = append(trials, t)
		return nil
	})

	sort.SliceStable(trials, func(i, j int) bool {
		a, b := trials[i], trials[j]
		if math.IsNaN(a.Value) != math.IsNaN(b.Value) {
			return !math.IsNaN(a.Value)
		}
		return a.Value < b.Value
	})
	return trials, err
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	visit func(map[string]float64) error,
) error {
	if depth == len(g.paramNames) {
		if err := ctx.Err(); err != nil {
			return err
		}
		return visit(current)
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64, len(current)+1)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, newParams, visit); err != nil {
			return err
		}
	}
	return nil
}
