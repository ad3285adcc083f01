package query

import (
	"math"
	"regexp"
	"sort"

	"github.com/dd0wney/xnetgraph/pkg/ferrors"
	"github.com/dd0wney/xnetgraph/pkg/graph"
)

// SelectNodes parses and evaluates src against node scope (§4.6). On any
// parse or bind error it returns an empty selector and the error (the
// selector is left empty per §4.6 Errors).
func SelectNodes(g *graph.Graph, src string) (*Selector, error) {
	return evaluate(g, graph.ScopeNode, src)
}

// SelectEdges parses and evaluates src against edge scope.
func SelectEdges(g *graph.Graph, src string) (*Selector, error) {
	return evaluate(g, graph.ScopeEdge, src)
}

func evaluate(g *graph.Graph, scope graph.Scope, src string) (*Selector, error) {
	sel := &Selector{Scope: scope}
	expr, err := Parse(src)
	if err != nil {
		return sel, err
	}

	ev := &evaluator{g: g, scope: scope}
	var capacity uint64
	var isActive func(uint64) bool
	if scope == graph.ScopeNode {
		capacity = g.NodeCapacity()
		isActive = g.IsNodeActive
	} else {
		capacity = g.EdgeCapacity()
		isActive = g.IsEdgeActive
	}

	for i := uint64(0); i < capacity; i++ {
		if !isActive(i) {
			continue
		}
		ok, err := ev.eval(expr, i)
		if err != nil {
			return &Selector{Scope: scope}, err
		}
		if ok {
			sel.add(i)
		}
	}
	return sel, nil
}

type evaluator struct {
	g     *graph.Graph
	scope graph.Scope
}

func (ev *evaluator) eval(expr Expr, idx uint64) (bool, error) {
	switch e := expr.(type) {
	case LogicExpr:
		left, err := ev.eval(e.Left, idx)
		if err != nil {
			return false, err
		}
		if e.Op == "AND" && !left {
			return false, nil
		}
		if e.Op == "OR" && left {
			return true, nil
		}
		return ev.eval(e.Right, idx)
	case NotExpr:
		v, err := ev.eval(e.Operand, idx)
		if err != nil {
			return false, err
		}
		return !v, nil
	case Predicate:
		return ev.evalPredicate(e, idx)
	default:
		return false, ferrors.QueryError("Evaluate", 0, errUnknownNode)
	}
}

var errUnknownNode = strErr("unknown AST node")

type qualTargets struct {
	storeScope graph.Scope
	indices    []uint64
	mode       string // "single", "any", "all"
}

func (ev *evaluator) resolveQualifier(qual Qualifier, idx uint64) (qualTargets, error) {
	if ev.scope == graph.ScopeNode {
		switch qual {
		case QualSelf:
			return qualTargets{storeScope: graph.ScopeNode, indices: []uint64{idx}, mode: "single"}, nil
		case QualAnyNeighbor, QualBothNeighbor:
			neighbors := neighborUnion(ev.g, idx)
			mode := "any"
			if qual == QualBothNeighbor {
				mode = "all"
			}
			return qualTargets{storeScope: graph.ScopeNode, indices: neighbors, mode: mode}, nil
		default:
			return qualTargets{}, bindErr("qualifier not valid for node selection: " + string(qual))
		}
	}
	// edge scope
	from, to, _ := ev.g.EdgeEndpoints(idx)
	switch qual {
	case QualSelf:
		return qualTargets{storeScope: graph.ScopeEdge, indices: []uint64{idx}, mode: "single"}, nil
	case QualSrc:
		return qualTargets{storeScope: graph.ScopeNode, indices: []uint64{from}, mode: "single"}, nil
	case QualDst:
		return qualTargets{storeScope: graph.ScopeNode, indices: []uint64{to}, mode: "single"}, nil
	case QualAny:
		return qualTargets{storeScope: graph.ScopeNode, indices: []uint64{from, to}, mode: "any"}, nil
	case QualBoth:
		return qualTargets{storeScope: graph.ScopeNode, indices: []uint64{from, to}, mode: "all"}, nil
	default:
		return qualTargets{}, bindErr("qualifier not valid for edge selection: " + string(qual))
	}
}

func bindErr(msg string) error {
	return ferrors.QueryError("Bind", 0, strErr(msg))
}

func neighborUnion(g *graph.Graph, n uint64) []uint64 {
	seen := make(map[uint64]struct{})
	var out []uint64
	for _, ne := range g.OutNeighbors(n) {
		if _, dup := seen[ne.Neighbor]; !dup {
			seen[ne.Neighbor] = struct{}{}
			out = append(out, ne.Neighbor)
		}
	}
	for _, ne := range g.InNeighbors(n) {
		if _, dup := seen[ne.Neighbor]; !dup {
			seen[ne.Neighbor] = struct{}{}
			out = append(out, ne.Neighbor)
		}
	}
	return out
}

func (ev *evaluator) evalPredicate(p Predicate, idx uint64) (bool, error) {
	targets, err := ev.resolveQualifier(p.Qualifier, idx)
	if err != nil {
		return false, err
	}
	if targets.mode == "all" && len(targets.indices) == 0 {
		return false, nil // no vacuous truth (§4.6, both.neighbor on isolated node)
	}

	attr, ok := ev.g.GetAttribute(targets.storeScope, p.Attribute)
	if !ok {
		return false, bindErr("unknown attribute: " + p.Attribute)
	}

	results := make([]bool, 0, len(targets.indices))
	for _, t := range targets.indices {
		ok, err := evalOnAttribute(ev.g, attr, int(t), p)
		if err != nil {
			return false, err
		}
		results = append(results, ok)
	}

	switch targets.mode {
	case "single":
		if len(results) == 0 {
			return false, nil
		}
		return results[0], nil
	case "any":
		for _, r := range results {
			if r {
				return true, nil
			}
		}
		return false, nil
	case "all":
		for _, r := range results {
			if !r {
				return false, nil
			}
		}
		return true, nil
	default:
		return false, nil
	}
}

func evalOnAttribute(g *graph.Graph, attr *graph.Attribute, row int, p Predicate) (bool, error) {
	switch attr.BaseType() {
	case graph.TypeString:
		return evalString(attr, row, p)
	case graph.TypeCategory:
		return evalCategory(attr, row, p)
	default:
		return evalNumeric(g, attr, row, p)
	}
}

func evalString(attr *graph.Attribute, row int, p Predicate) (bool, error) {
	vals, err := attr.GetString(row)
	if err != nil {
		return false, err
	}
	idx := 0
	if p.Accessor != nil && p.Accessor.Kind == AccessorIndex {
		idx = p.Accessor.Index
	}
	if idx < 0 || idx >= len(vals) {
		return false, ferrors.QueryError("Evaluate", p.Offset, strErr("string accessor index out of range"))
	}
	v := vals[idx]
	switch p.Operator {
	case OpRegex:
		if v == nil {
			return false, nil
		}
		re, err := regexp.CompilePOSIX(p.Literal.Str)
		if err != nil {
			return false, ferrors.QueryError("Bind", 0, err)
		}
		return re.MatchString(*v), nil
	case OpEq:
		return v != nil && *v == p.Literal.Str, nil
	case OpNeq:
		return v == nil || *v != p.Literal.Str, nil
	case OpIn:
		if v == nil {
			return false, nil
		}
		for _, s := range p.Literal.Strs {
			if *v == s {
				return true, nil
			}
		}
		return false, nil
	default:
		return false, graph.WrongTypeError("Evaluate", attr.Name())
	}
}

func evalCategory(attr *graph.Attribute, row int, p Predicate) (bool, error) {
	code, err := attr.GetCategoryCode(row)
	if err != nil {
		return false, err
	}
	switch p.Operator {
	case OpEq, OpNeq:
		target, err := resolveCategoryLiteral(attr, p.Literal)
		if err != nil {
			return false, err
		}
		if p.Operator == OpEq {
			return code == target, nil
		}
		return code != target, nil
	case OpIn:
		var targets []int32
		if p.Literal.Kind == LitStringList {
			for _, s := range p.Literal.Strs {
				id, ok := attr.Dictionary().IDFor(s)
				if !ok {
					id = graph.MissingCategoryID
				}
				targets = append(targets, id)
			}
		} else {
			for _, n := range p.Literal.Numbers {
				targets = append(targets, int32(n))
			}
		}
		for _, t := range targets {
			if code == t {
				return true, nil
			}
		}
		return false, nil
	default:
		// numeric ordering over the raw code, once resolved through the dictionary.
		return compareFloat(float64(code), p.Operator, p.Literal.Number), nil
	}
}

func resolveCategoryLiteral(attr *graph.Attribute, lit Literal) (int32, error) {
	if lit.Kind == LitString {
		id, ok := attr.Dictionary().IDFor(lit.Str)
		if !ok {
			return graph.MissingCategoryID, nil
		}
		return id, nil
	}
	return int32(lit.Number), nil
}

func evalNumeric(g *graph.Graph, attr *graph.Attribute, row int, p Predicate) (bool, error) {
	vals, err := attr.GetFloat64(row)
	if err != nil {
		return false, err
	}

	if p.Accessor != nil {
		switch p.Accessor.Kind {
		case AccessorAny, AccessorAll:
			matched := 0
			for _, v := range vals {
				if compareFloat(v, p.Operator, p.Literal.Number) {
					matched++
				}
			}
			if p.Accessor.Kind == AccessorAny {
				return matched > 0, nil
			}
			return matched == len(vals), nil
		}
	}

	scalar, err := reduceVector(g, vals, p.Accessor, attr, row)
	if err != nil {
		return false, err
	}

	switch p.Operator {
	case OpIn:
		for _, n := range p.Literal.Numbers {
			if scalar == n {
				return true, nil
			}
		}
		return false, nil
	default:
		return compareFloat(scalar, p.Operator, p.Literal.Number), nil
	}
}

// reduceVector applies an optional accessor to a value vector, returning
// a single scalar for comparison (§4.6 Accessors on vector attributes).
func reduceVector(g *graph.Graph, vals []float64, acc *Accessor, attr *graph.Attribute, row int) (float64, error) {
	if acc == nil {
		if len(vals) == 0 {
			return 0, nil
		}
		return vals[0], nil
	}
	switch acc.Kind {
	case AccessorIndex:
		if acc.Index < 0 || acc.Index >= len(vals) {
			return 0, graph.OutOfRangeError("Evaluate")
		}
		return vals[acc.Index], nil
	case AccessorMin:
		return minOf(vals), nil
	case AccessorMax:
		return maxOf(vals), nil
	case AccessorAvg:
		return avgOf(vals), nil
	case AccessorMedian:
		return medianOf(vals), nil
	case AccessorStd:
		return stdOf(vals), nil
	case AccessorAbs:
		return normOf(vals), nil
	case AccessorDot:
		other, err := dotOperand(g, acc, attr, row)
		if err != nil {
			return 0, err
		}
		return dotProduct(vals, other)
	default:
		if len(vals) == 0 {
			return 0, nil
		}
		return vals[0], nil
	}
}

// dotOperand resolves the second vector of a dot() accessor: either a
// literal number list, or another equal-scope attribute's row.
func dotOperand(g *graph.Graph, acc *Accessor, attr *graph.Attribute, row int) ([]float64, error) {
	if acc.DotLiteral != nil {
		return acc.DotLiteral, nil
	}
	otherAttr, found := g.GetAttribute(attr.Scope(), acc.DotAttr)
	if !found {
		return nil, ferrors.QueryError("Bind", 0, strErr("unknown dot() attribute: "+acc.DotAttr))
	}
	return otherAttr.GetFloat64(row)
}

func dotProduct(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, graph.InvalidArgumentError("Evaluate", "dot() requires equal-dimension vectors")
	}
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum, nil
}

func minOf(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	m := v[0]
	for _, x := range v[1:] {
		if x < m {
			m = x
		}
	}
	return m
}

func maxOf(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	m := v[0]
	for _, x := range v[1:] {
		if x > m {
			m = x
		}
	}
	return m
}

func avgOf(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	var sum float64
	for _, x := range v {
		sum += x
	}
	return sum / float64(len(v))
}

func medianOf(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	sorted := append([]float64(nil), v...)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

func stdOf(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	mean := avgOf(v)
	var sum float64
	for _, x := range v {
		sum += (x - mean) * (x - mean)
	}
	return math.Sqrt(sum / float64(len(v)))
}

func normOf(v []float64) float64 {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}

func compareFloat(v float64, op Operator, rhs float64) bool {
	switch op {
	case OpEq:
		return v == rhs
	case OpNeq:
		return v != rhs
	case OpLt:
		return v < rhs
	case OpLte:
		return v <= rhs
	case OpGt:
		return v > rhs
	case OpGte:
		return v >= rhs
	default:
		return false
	}
}
