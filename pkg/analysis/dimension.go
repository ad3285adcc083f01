package analysis

import (
	"math"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/dd0wney/xnetgraph/pkg/ferrors"
	"github.com/dd0wney/xnetgraph/pkg/graph"
	"github.com/dd0wney/xnetgraph/pkg/parallel"
)

// Method names a fractal-dimension estimation technique, grounded on
// CXNetworkMeasurement.c's four BFS-capacity derivative estimators.
type Method int

const (
	MethodForwardDifference Method = iota
	MethodBackwardDifference
	MethodCentralDifference
	MethodLeastSquares
)

// forwardDifferenceCoeffs are CXDimensionForwardDifferenceCoeffs, orders 1..6.
var forwardDifferenceCoeffs = [6][7]float64{
	{-1, 1, 0, 0, 0, 0, 0},
	{-3.0 / 2, 2, -1.0 / 2, 0, 0, 0, 0},
	{-11.0 / 6, 3, -3.0 / 2, 1.0 / 3, 0, 0, 0},
	{-25.0 / 12, 4, -3, 4.0 / 3, -1.0 / 4, 0, 0},
	{-137.0 / 60, 5, -5, 10.0 / 3, -5.0 / 4, 1.0 / 5, 0},
	{-49.0 / 20, 6, -15.0 / 2, 20.0 / 3, -15.0 / 4, 6.0 / 5, -1.0 / 6},
}

// centralDifferenceCoeffs are CXDimensionCentralDifferenceCoeffs, orders 1..4.
var centralDifferenceCoeffs = [4][4]float64{
	{0.5, 0, 0, 0},
	{2.0 / 3, -1.0 / 12, 0, 0},
	{3.0 / 4, -3.0 / 20, 1.0 / 60, 0},
	{4.0 / 5, -1.0 / 5, 4.0 / 105, -1.0 / 280},
}

// DimensionConfig configures a dimension estimation run.
type DimensionConfig struct {
	Method   Method
	Order    int `validate:"gte=1"`
	MaxLevel int `validate:"gte=1"`
	Radius   int `validate:"gte=1"`
	Workers  int
}

var dimensionValidator = validator.New()

func (c DimensionConfig) validate() error {
	if err := dimensionValidator.Struct(c); err != nil {
		return ferrors.InvalidArgument("EstimateDimension", err.Error())
	}
	switch c.Method {
	case MethodForwardDifference, MethodBackwardDifference:
		if c.Order < 1 || c.Order > 6 {
			return ferrors.InvalidArgument("EstimateDimension", "order must be 1..6 for finite-difference methods")
		}
	case MethodCentralDifference:
		if c.Order < 1 || c.Order > 4 {
			return ferrors.InvalidArgument("EstimateDimension", "order must be 1..4 for central difference")
		}
	case MethodLeastSquares:
		// no upper bound
	default:
		return ferrors.InvalidArgument("EstimateDimension", "unknown method")
	}
	if c.Radius+c.Order > c.MaxLevel && c.Method != MethodLeastSquares {
		return ferrors.InvalidArgument("EstimateDimension", "radius+order exceeds max_level")
	}
	return nil
}

// capacitySeries returns capacity[r] = |{nodes within BFS distance r}|
// for r in 0..maxLevel, rooted at start.
func capacitySeries(g *graph.Graph, start uint64, maxLevel int) []uint32 {
	capacity := make([]uint32, maxLevel+1)
	visited := map[uint64]struct{}{start: {}}
	frontier := []uint64{start}
	capacity[0] = 1
	cumulative := uint32(1)
	for level := 1; level <= maxLevel && len(frontier) > 0; level++ {
		var next []uint64
		for _, u := range frontier {
			for _, ne := range g.OutNeighbors(u) {
				if _, ok := visited[ne.Neighbor]; ok {
					continue
				}
				visited[ne.Neighbor] = struct{}{}
				next = append(next, ne.Neighbor)
			}
			if g.Directed() {
				for _, ne := range g.InNeighbors(u) {
					if _, ok := visited[ne.Neighbor]; ok {
						continue
					}
					visited[ne.Neighbor] = struct{}{}
					next = append(next, ne.Neighbor)
				}
			}
		}
		cumulative += uint32(len(next))
		capacity[level] = cumulative
		frontier = next
	}
	// fill remaining levels with the final cumulative count once the BFS
	// frontier is exhausted (graph component fully covered).
	last := capacity[0]
	for i := range capacity {
		if capacity[i] == 0 && i > 0 {
			capacity[i] = last
		} else {
			last = capacity[i]
		}
	}
	return capacity
}

// EstimateNodeDimension estimates the local fractal dimension at node
// start, per the per-node BFS-capacity estimators of
// CXNetworkMeasurement.c.
func EstimateNodeDimension(g *graph.Graph, start uint64, cfg DimensionConfig) (float64, error) {
	if err := cfg.validate(); err != nil {
		return 0, err
	}
	capacity := capacitySeries(g, start, cfg.MaxLevel)
	return estimateFromCapacity(capacity, cfg)
}

// EstimateGlobalDimension samples every node in nodes (optionally in
// parallel across cfg.Workers goroutines, per §5's worker-pool fan-out
// over disjoint node chunks) and estimates the dimension of the
// population-mean capacity series.
func EstimateGlobalDimension(g *graph.Graph, nodes []uint64, cfg DimensionConfig) (float64, error) {
	if err := cfg.validate(); err != nil {
		return 0, err
	}
	if len(nodes) == 0 {
		return 0, ferrors.InvalidArgument("EstimateGlobalDimension", "no sampled nodes")
	}

	sums := make([]float64, cfg.MaxLevel+1)
	var mu sync.Mutex
	accumulate := func(series []uint32) {
		mu.Lock()
		for i, c := range series {
			sums[i] += float64(c)
		}
		mu.Unlock()
	}

	workers := cfg.Workers
	if workers <= 1 || len(nodes) < 2 {
		for _, n := range nodes {
			accumulate(capacitySeries(g, n, cfg.MaxLevel))
		}
	} else {
		pool, err := parallel.NewWorkerPool(workers)
		if err != nil {
			return 0, err
		}
		pool.ForEachChunk(len(nodes), func(start, end int) {
			for _, n := range nodes[start:end] {
				accumulate(capacitySeries(g, n, cfg.MaxLevel))
			}
		})
		pool.Close()
	}

	avg := make([]float64, len(sums))
	for i, s := range sums {
		avg[i] = s / float64(len(nodes))
	}
	return estimateFromAverageSeries(avg, cfg)
}

func estimateFromCapacity(capacity []uint32, cfg DimensionConfig) (float64, error) {
	r := cfg.Radius
	if r >= len(capacity) || capacity[r] == 0 {
		return 0, ferrors.InvalidArgument("EstimateDimension", "radius out of range for capacity series")
	}

	switch cfg.Method {
	case MethodForwardDifference:
		coeffs := forwardDifferenceCoeffs[cfg.Order-1]
		var deriv float64
		for offset := 0; offset <= cfg.Order; offset++ {
			ri := r + offset
			if ri == 0 || ri >= len(capacity) {
				continue
			}
			deriv += coeffs[offset] * float64(capacity[ri])
		}
		return deriv * float64(r) / float64(capacity[r]), nil

	case MethodBackwardDifference:
		coeffs := forwardDifferenceCoeffs[cfg.Order-1]
		var deriv float64
		for offset := 0; offset <= cfg.Order; offset++ {
			ri := r - offset
			if offset > r || ri == 0 || ri >= len(capacity) {
				continue
			}
			deriv -= coeffs[offset] * float64(capacity[ri])
		}
		return deriv * float64(r) / float64(capacity[r]), nil

	case MethodCentralDifference:
		coeffs := centralDifferenceCoeffs[cfg.Order-1]
		var deriv float64
		for offset := 1; offset <= cfg.Order; offset++ {
			c := coeffs[offset-1]
			if lo := r - offset; lo > 0 {
				deriv -= c * float64(capacity[lo])
			}
			if hi := r + offset; hi < len(capacity) {
				deriv += c * float64(capacity[hi])
			}
		}
		return deriv * float64(r) / float64(capacity[r]), nil

	case MethodLeastSquares:
		return leastSquaresSlope(r, cfg.Order, len(capacity), func(ri int) (float64, bool) {
			if ri < 0 || ri >= len(capacity) || capacity[ri] == 0 {
				return 0, false
			}
			return float64(capacity[ri]), true
		})

	default:
		return 0, ferrors.InvalidArgument("EstimateDimension", "unknown method")
	}
}

func estimateFromAverageSeries(series []float64, cfg DimensionConfig) (float64, error) {
	r := cfg.Radius
	if r >= len(series) || series[r] <= 0 {
		return 0, ferrors.InvalidArgument("EstimateDimension", "radius out of range for capacity series")
	}

	switch cfg.Method {
	case MethodForwardDifference:
		coeffs := forwardDifferenceCoeffs[cfg.Order-1]
		var deriv float64
		for offset := 0; offset <= cfg.Order; offset++ {
			ri := r + offset
			if ri == 0 || ri >= len(series) {
				continue
			}
			deriv += coeffs[offset] * series[ri]
		}
		return deriv * float64(r) / series[r], nil

	case MethodBackwardDifference:
		coeffs := forwardDifferenceCoeffs[cfg.Order-1]
		var deriv float64
		for offset := 0; offset <= cfg.Order; offset++ {
			ri := r - offset
			if offset > r || ri == 0 || ri >= len(series) {
				continue
			}
			deriv -= coeffs[offset] * series[ri]
		}
		return deriv * float64(r) / series[r], nil

	case MethodCentralDifference:
		coeffs := centralDifferenceCoeffs[cfg.Order-1]
		var deriv float64
		for offset := 1; offset <= cfg.Order; offset++ {
			c := coeffs[offset-1]
			if lo := r - offset; lo > 0 {
				deriv -= c * series[lo]
			}
			if hi := r + offset; hi < len(series) {
				deriv += c * series[hi]
			}
		}
		return deriv * float64(r) / series[r], nil

	case MethodLeastSquares:
		return leastSquaresSlope(r, cfg.Order, len(series), func(ri int) (float64, bool) {
			if ri < 0 || ri >= len(series) || series[ri] <= 0 {
				return 0, false
			}
			return series[ri], true
		})

	default:
		return 0, ferrors.InvalidArgument("EstimateDimension", "unknown method")
	}
}

// leastSquaresSlope fits log(capacity) vs log(radius) over the symmetric
// window r-order..r+order (radii <= 0 or past the series skipped), returning the slope directly as the
// dimension estimate (CXDimensionEstimateLeastSquares/FromAverageSeries).
func leastSquaresSlope(r, order, seriesLen int, at func(int) (float64, bool)) (float64, error) {
	if r <= order {
		return 0, ferrors.InvalidArgument("EstimateDimension", "radius must exceed order for least-squares")
	}
	var sumX, sumY, sumXY, sumXX float64
	var count float64
	for offset := -order; offset <= order; offset++ {
		ri := r + offset
		if ri <= 0 || ri >= seriesLen {
			continue
		}
		v, ok := at(ri)
		if !ok {
			continue
		}
		x := math.Log(float64(ri))
		y := math.Log(v)
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
		count++
	}
	denom := count*sumXX - sumX*sumX
	if denom == 0 {
		return 0, ferrors.InvalidArgument("EstimateDimension", "degenerate least-squares window")
	}
	return (count*sumXY - sumX*sumY) / denom, nil
}
