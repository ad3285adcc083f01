package query

// Qualifier selects which node(s) relative to the scope a predicate's
// attribute reference resolves against (§4.6 qualref).
type Qualifier string

const (
	QualSelf         Qualifier = "self"
	QualSrc          Qualifier = "src"
	QualDst          Qualifier = "dst"
	QualAny          Qualifier = "any"
	QualBoth         Qualifier = "both"
	QualAnyNeighbor  Qualifier = "any.neighbor"
	QualBothNeighbor Qualifier = "both.neighbor"
)

// AccessorKind is the optional component/reduction applied to a vector
// attribute reference (§4.6 accessor).
type AccessorKind string

const (
	AccessorNone   AccessorKind = ""
	AccessorIndex  AccessorKind = "index"
	AccessorAny    AccessorKind = "any"
	AccessorAll    AccessorKind = "all"
	AccessorMin    AccessorKind = "min"
	AccessorMax    AccessorKind = "max"
	AccessorAvg    AccessorKind = "avg"
	AccessorMedian AccessorKind = "median"
	AccessorStd    AccessorKind = "std"
	AccessorAbs    AccessorKind = "abs"
	AccessorDot    AccessorKind = "dot"
)

// Accessor narrows a vector attribute reference to a component or a
// scalar reduction.
type Accessor struct {
	Kind        AccessorKind
	Index       int       // for AccessorIndex
	DotAttr     string    // for AccessorDot, when the argument is an identifier
	DotLiteral  []float64 // for AccessorDot, when the argument is a numeric list
}

// LiteralKind distinguishes the operator-RHS literal shapes of §4.6.
type LiteralKind int

const (
	LitNumber LiteralKind = iota
	LitString
	LitNumberList
	LitStringList
)

// Literal is the right-hand side of a predicate.
type Literal struct {
	Kind    LiteralKind
	Number  float64
	Str     string
	Numbers []float64
	Strs    []string
}

// Operator is one of the §4.6 comparison/membership operators.
type Operator string

const (
	OpEq     Operator = "=="
	OpNeq    Operator = "!="
	OpLt     Operator = "<"
	OpLte    Operator = "<="
	OpGt     Operator = ">"
	OpGte    Operator = ">="
	OpIn     Operator = "IN"
	OpRegex  Operator = "=~"
)

// Expr is any node of the boolean predicate AST.
type Expr interface{ exprNode() }

// LogicExpr is an AND/OR combination of two sub-expressions.
type LogicExpr struct {
	Op          string // "AND" or "OR"
	Left, Right Expr
}

func (LogicExpr) exprNode() {}

// NotExpr negates its operand.
type NotExpr struct{ Operand Expr }

func (NotExpr) exprNode() {}

// Predicate is a single qualref/accessor/operator/literal comparison.
type Predicate struct {
	Qualifier Qualifier
	Attribute string
	Accessor  *Accessor
	Operator  Operator
	Literal   Literal
	Offset    int // byte offset of the predicate, for bind-error reporting
}

func (Predicate) exprNode() {}
