package ast

import "github.com/leapstack-labs/cosmosql/pkg/token"

// ---------- Literals & references ----------

// LiteralKind is the type of a literal.
type LiteralKind uint8

// LiteralKind constants.
const (
	LiteralNumber LiteralKind = iota
	LiteralString
	LiteralTrue
	LiteralFalse
	LiteralNull
	LiteralUndefined
)

func (k LiteralKind) String() string {
	switch k {
	case LiteralNumber:
		return "number"
	case LiteralString:
		return "string"
	case LiteralTrue:
		return "true"
	case LiteralFalse:
		return "false"
	case LiteralNull:
		return "null"
	case LiteralUndefined:
		return "undefined"
	}
	return "unknown"
}

// Literal is a constant. Number holds the payload of number literals and
// Str the decoded text of string literals. MinMagnitude marks the integer
// 9223372036854775808, which is a float on its own and the smallest int64
// when negated.
type Literal struct {
	NodeInfo
	Kind         LiteralKind
	Number       token.Value
	Str          string
	MinMagnitude bool
}

func (*Literal) exprNode() {}

// Parameter is a named query parameter; Name includes the leading @.
type Parameter struct {
	NodeInfo
	Name string
}

func (*Parameter) exprNode() {}

// PropertyRef reads a property. With a nil Member it names an input
// (c, or an alias); otherwise it is member.name.
type PropertyRef struct {
	NodeInfo
	Member Expr
	Name   *Identifier
}

func (*PropertyRef) exprNode() {}

// MemberIndexer is member[index].
type MemberIndexer struct {
	NodeInfo
	Member Expr
	Index  Expr
}

func (*MemberIndexer) exprNode() {}

// FunctionCall is name(args) or udf.name(args).
type FunctionCall struct {
	NodeInfo
	Name *Identifier
	UDF  bool
	Args []Expr
}

func (*FunctionCall) exprNode() {}

// ---------- Operators ----------

// Unary is op operand, for NOT, ~, + and -.
type Unary struct {
	NodeInfo
	Op      token.Kind
	Operand Expr
}

func (*Unary) exprNode() {}

// Binary is left op right. Op is one of AND OR = != < <= > >= | ^ & << >>
// >>> || + - * / %.
type Binary struct {
	NodeInfo
	Op    token.Kind
	Left  Expr
	Right Expr
}

func (*Binary) exprNode() {}

// Coalesce is left ?? right.
type Coalesce struct {
	NodeInfo
	Left  Expr
	Right Expr
}

func (*Coalesce) exprNode() {}

// Conditional is cond ? then : else.
type Conditional struct {
	NodeInfo
	Cond Expr
	Then Expr
	Else Expr
}

func (*Conditional) exprNode() {}

// Between is expr [NOT] BETWEEN low AND high.
type Between struct {
	NodeInfo
	Expr Expr
	Not  bool
	Low  Expr
	High Expr
}

func (*Between) exprNode() {}

// In is expr [NOT] IN (list).
type In struct {
	NodeInfo
	Expr Expr
	Not  bool
	List []Expr
}

func (*In) exprNode() {}

// Like is expr [NOT] LIKE pattern [ESCAPE esc].
type Like struct {
	NodeInfo
	Expr    Expr
	Not     bool
	Pattern Expr
	Escape  *Literal // optional
}

func (*Like) exprNode() {}

// ---------- Constructors & subqueries ----------

// ArrayCreate is [a, b, ...].
type ArrayCreate struct {
	NodeInfo
	Items []Expr
}

func (*ArrayCreate) exprNode() {}

// ObjectProperty is one "name": value pair of an object constructor.
type ObjectProperty struct {
	NodeInfo
	Name  string
	Value Expr
}

// ObjectCreate is {"a": x, ...}.
type ObjectCreate struct {
	NodeInfo
	Props []*ObjectProperty
}

func (*ObjectCreate) exprNode() {}

// Exists is EXISTS(subquery).
type Exists struct {
	NodeInfo
	Query *Query
}

func (*Exists) exprNode() {}

// ArraySubquery is ARRAY(subquery).
type ArraySubquery struct {
	NodeInfo
	Query *Query
}

func (*ArraySubquery) exprNode() {}

// Subquery is a parenthesized query used as a scalar.
type Subquery struct {
	NodeInfo
	Query *Query
}

func (*Subquery) exprNode() {}
