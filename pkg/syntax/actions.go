package syntax

import (
	"errors"
	"fmt"
	"math"

	"github.com/leapstack-labs/cosmosql/pkg/ast"
	"github.com/leapstack-labs/cosmosql/pkg/diag"
	"github.com/leapstack-labs/cosmosql/pkg/token"
)

// Errors returned by the dispatcher. Both indicate tables that do not match
// this grammar.
var (
	ErrUnknownProduction = errors.New("unknown production")
	ErrValueType         = errors.New("unexpected semantic value")
)

// Dispatcher builds AST nodes for reductions of the grammar. It holds no
// state and may be shared.
type Dispatcher struct{}

// Reduce builds the value of rule from the popped values and spans, in
// stack order. span is the merged span of the whole production. Problems
// that are not syntax errors are reported to rep.
func (Dispatcher) Reduce(rep diag.Reporter, rule int, span token.Span, values []any, spans []token.Span) (any, error) {
	r := &reduction{
		prod:   Production(rule),
		span:   span,
		values: values,
		spans:  spans,
	}
	v := r.build(rep)
	if r.err != nil {
		return nil, fmt.Errorf("%s: %w", r.prod, r.err)
	}
	return v, nil
}

// reduction decodes the popped values of one production. The first decoding
// failure is kept in err and later accessors return zero values.
type reduction struct {
	prod   Production
	span   token.Span
	values []any
	spans  []token.Span
	err    error
}

// arg returns value i as a T. An absent optional part (nil) decodes to the
// zero T.
func arg[T any](r *reduction, i int) T {
	var zero T
	if r.err != nil {
		return zero
	}
	if i >= len(r.values) {
		r.err = fmt.Errorf("%w: value %d of %d", ErrValueType, i, len(r.values))
		return zero
	}
	v := r.values[i]
	if v == nil {
		return zero
	}
	t, ok := v.(T)
	if !ok {
		r.err = fmt.Errorf("%w: value %d is %T, want %T", ErrValueType, i, v, (*T)(nil))
		return zero
	}
	return t
}

func (r *reduction) info() ast.NodeInfo {
	return ast.NodeInfo{Span: r.span}
}

func (r *reduction) at(i int) ast.NodeInfo {
	if i >= len(r.spans) {
		return r.info()
	}
	return ast.NodeInfo{Span: r.spans[i]}
}

func (r *reduction) tok(i int) token.Token {
	return arg[token.Token](r, i)
}

func (r *reduction) expr(i int) ast.Expr {
	return arg[ast.Expr](r, i)
}

func (r *reduction) ident(i int) *ast.Identifier {
	return &ast.Identifier{NodeInfo: r.at(i), Name: r.tok(i).Text}
}

func (r *reduction) number(i int) *ast.Literal {
	return &ast.Literal{NodeInfo: r.at(i), Kind: ast.LiteralNumber, Number: r.tok(i).Value}
}

func (r *reduction) str(i int) *ast.Literal {
	return &ast.Literal{NodeInfo: r.at(i), Kind: ast.LiteralString, Str: r.tok(i).Text}
}

func (r *reduction) keyword(kind ast.LiteralKind) *ast.Literal {
	return &ast.Literal{NodeInfo: r.info(), Kind: kind}
}

func (r *reduction) binary(i int) *ast.Binary {
	return &ast.Binary{
		NodeInfo: r.info(),
		Op:       r.tok(i).Kind,
		Left:     r.expr(i - 1),
		Right:    r.expr(i + 1),
	}
}

func (r *reduction) unary(op token.Kind) *ast.Unary {
	return &ast.Unary{NodeInfo: r.info(), Op: op, Operand: r.expr(1)}
}

//nolint:gocyclo // one case per production
func (r *reduction) build(rep diag.Reporter) any {
	switch r.prod {
	case pQuery:
		q := &ast.Query{
			NodeInfo:    r.info(),
			Select:      arg[*ast.SelectClause](r, 0),
			From:        arg[*ast.FromClause](r, 1),
			Where:       arg[*ast.WhereClause](r, 2),
			GroupBy:     arg[*ast.GroupByClause](r, 3),
			OrderBy:     arg[*ast.OrderByClause](r, 4),
			OffsetLimit: arg[*ast.OffsetLimitClause](r, 5),
		}
		if q.Select != nil && q.From == nil {
			if _, star := q.Select.Spec.(*ast.SelectStar); star {
				rep.Add(diag.SelectStarWithoutFrom, q.Select.Span)
			}
		}
		return q

	// SELECT
	case pSelectClause:
		return &ast.SelectClause{
			NodeInfo: r.info(),
			Distinct: arg[bool](r, 1),
			Top:      arg[*ast.TopSpec](r, 2),
			Spec:     arg[ast.SelectSpec](r, 3),
		}
	case pDistinctNone:
		return false
	case pDistinct:
		return true
	case pTopNone, pFromNone, pWhereNone, pGroupByNone, pOrderByNone, pOffsetLimitNone, pPathNone, pEscapeNone:
		return nil
	case pTop:
		return &ast.TopSpec{NodeInfo: r.info(), Count: r.expr(1)}
	case pCountNumber:
		return r.number(0)
	case pCountParam:
		return &ast.Parameter{NodeInfo: r.info(), Name: r.tok(0).Text}
	case pSelectStar:
		return &ast.SelectStar{NodeInfo: r.info()}
	case pSelectValue:
		return &ast.SelectValue{NodeInfo: r.info(), Expr: r.expr(1)}
	case pSelectList:
		return &ast.SelectList{NodeInfo: r.info(), Items: arg[[]*ast.SelectItem](r, 0)}
	case pSelectListFirst:
		return []*ast.SelectItem{arg[*ast.SelectItem](r, 0)}
	case pSelectListNext:
		return append(arg[[]*ast.SelectItem](r, 0), arg[*ast.SelectItem](r, 2))
	case pSelectItem:
		return &ast.SelectItem{NodeInfo: r.info(), Expr: r.expr(0)}
	case pSelectItemAlias:
		return &ast.SelectItem{NodeInfo: r.info(), Expr: r.expr(0), Alias: r.ident(2)}
	case pSelectItemError:
		return nil

	// FROM
	case pFrom:
		return &ast.FromClause{NodeInfo: r.info(), Source: arg[ast.CollectionExpr](r, 1)}
	case pAliased:
		return &ast.AliasedCollection{NodeInfo: r.info(), Source: arg[ast.Collection](r, 0)}
	case pAliasedAs:
		return &ast.AliasedCollection{NodeInfo: r.info(), Source: arg[ast.Collection](r, 0), Alias: r.ident(2)}
	case pAliasedBare:
		return &ast.AliasedCollection{NodeInfo: r.info(), Source: arg[ast.Collection](r, 0), Alias: r.ident(1)}
	case pIterator:
		return &ast.ArrayIteratorCollection{NodeInfo: r.info(), Alias: r.ident(0), Source: arg[ast.Collection](r, 2)}
	case pJoin:
		return &ast.JoinCollection{
			NodeInfo: r.info(),
			Left:     arg[ast.CollectionExpr](r, 0),
			Right:    arg[ast.CollectionExpr](r, 2),
		}
	case pInputPath:
		return &ast.InputPathCollection{NodeInfo: r.info(), Input: r.ident(0), Path: arg[ast.PathExpr](r, 1)}
	case pSubqueryCollection:
		return &ast.SubqueryCollection{NodeInfo: r.info(), Query: arg[*ast.Query](r, 1)}
	case pPathIdent:
		return &ast.IdentifierPath{NodeInfo: r.info(), Parent: arg[ast.PathExpr](r, 0), Value: r.ident(2)}
	case pPathNumber:
		return &ast.NumberPath{NodeInfo: r.info(), Parent: arg[ast.PathExpr](r, 0), Value: r.number(2)}
	case pPathString:
		return &ast.StringPath{NodeInfo: r.info(), Parent: arg[ast.PathExpr](r, 0), Value: r.str(2)}

	// WHERE, GROUP BY, ORDER BY, OFFSET LIMIT
	case pWhere:
		return &ast.WhereClause{NodeInfo: r.info(), Cond: r.expr(1)}
	case pGroupBy:
		return &ast.GroupByClause{NodeInfo: r.info(), Exprs: arg[[]ast.Expr](r, 2)}
	case pOrderBy:
		return &ast.OrderByClause{NodeInfo: r.info(), Items: arg[[]*ast.OrderByItem](r, 2)}
	case pOrderItemsFirst:
		return []*ast.OrderByItem{arg[*ast.OrderByItem](r, 0)}
	case pOrderItemsNext:
		return append(arg[[]*ast.OrderByItem](r, 0), arg[*ast.OrderByItem](r, 2))
	case pOrderItem:
		return &ast.OrderByItem{NodeInfo: r.info(), Expr: r.expr(0)}
	case pOrderItemAsc:
		return &ast.OrderByItem{NodeInfo: r.info(), Expr: r.expr(0), Explicit: true}
	case pOrderItemDesc:
		return &ast.OrderByItem{NodeInfo: r.info(), Expr: r.expr(0), Descending: true, Explicit: true}
	case pOffsetLimit:
		return &ast.OffsetLimitClause{NodeInfo: r.info(), Offset: r.expr(1), Limit: r.expr(3)}

	// Scalar expressions
	case pScalarListFirst:
		return []ast.Expr{r.expr(0)}
	case pScalarListNext:
		return append(arg[[]ast.Expr](r, 0), r.expr(2))
	case pConditional:
		return &ast.Conditional{NodeInfo: r.info(), Cond: r.expr(0), Then: r.expr(2), Else: r.expr(4)}
	case pCoalesce:
		return &ast.Coalesce{NodeInfo: r.info(), Left: r.expr(0), Right: r.expr(2)}
	case pScalarLogical, pLogicalBinary, pBinaryUnary, pUnaryPrimary:
		return r.expr(0)
	case pIn:
		return &ast.In{NodeInfo: r.info(), Expr: r.expr(0), List: arg[[]ast.Expr](r, 3)}
	case pNotIn:
		return &ast.In{NodeInfo: r.info(), Expr: r.expr(0), Not: true, List: arg[[]ast.Expr](r, 4)}
	case pLike:
		return &ast.Like{NodeInfo: r.info(), Expr: r.expr(0), Pattern: r.expr(2), Escape: arg[*ast.Literal](r, 3)}
	case pNotLike:
		return &ast.Like{NodeInfo: r.info(), Expr: r.expr(0), Not: true, Pattern: r.expr(3), Escape: arg[*ast.Literal](r, 4)}
	case pBetween:
		return &ast.Between{NodeInfo: r.info(), Expr: r.expr(0), Low: r.expr(2), High: r.expr(4)}
	case pNotBetween:
		return &ast.Between{NodeInfo: r.info(), Expr: r.expr(0), Not: true, Low: r.expr(3), High: r.expr(5)}
	case pEscape:
		return r.str(1)
	case pAnd, pOr,
		pEq, pNe, pLt, pLe, pGt, pGe,
		pBitOr, pBitXor, pBitAnd, pLshift, pRshift, pURshift,
		pConcat, pAdd, pSub, pMul, pDiv, pMod:
		return r.binary(1)

	case pNeg:
		if lit, ok := r.expr(1).(*ast.Literal); ok && lit.MinMagnitude && lit.Span == r.at(1).Span {
			// Unparenthesized, the magnitude of the smallest int64 negates
			// back into range.
			return &ast.Literal{NodeInfo: r.info(), Kind: ast.LiteralNumber, Number: token.IntValue(math.MinInt64)}
		}
		return r.unary(token.MINUS)
	case pPos:
		return r.unary(token.PLUS)
	case pBitNot:
		return r.unary(token.TILDE)
	case pNot:
		return r.unary(token.NOT)

	// Primary expressions
	case pIdent:
		return &ast.PropertyRef{NodeInfo: r.info(), Name: r.ident(0)}
	case pParam:
		return &ast.Parameter{NodeInfo: r.info(), Name: r.tok(0).Text}
	case pNumber:
		return r.number(0)
	case pNumberMin:
		lit := r.number(0)
		lit.MinMagnitude = true
		return lit
	case pString:
		return r.str(0)
	case pTrue:
		return r.keyword(ast.LiteralTrue)
	case pFalse:
		return r.keyword(ast.LiteralFalse)
	case pNull:
		return r.keyword(ast.LiteralNull)
	case pUndefined:
		return r.keyword(ast.LiteralUndefined)
	case pArrayEmpty:
		return &ast.ArrayCreate{NodeInfo: r.info()}
	case pArray:
		return &ast.ArrayCreate{NodeInfo: r.info(), Items: arg[[]ast.Expr](r, 1)}
	case pObjectEmpty:
		return &ast.ObjectCreate{NodeInfo: r.info()}
	case pObject:
		return &ast.ObjectCreate{NodeInfo: r.info(), Props: arg[[]*ast.ObjectProperty](r, 1)}
	case pPropsFirst:
		return []*ast.ObjectProperty{arg[*ast.ObjectProperty](r, 0)}
	case pPropsNext:
		return append(arg[[]*ast.ObjectProperty](r, 0), arg[*ast.ObjectProperty](r, 2))
	case pProp:
		return &ast.ObjectProperty{NodeInfo: r.info(), Name: r.tok(0).Text, Value: r.expr(2)}
	case pParen:
		return r.expr(1)
	case pSubquery:
		return &ast.Subquery{NodeInfo: r.info(), Query: arg[*ast.Query](r, 1)}
	case pParenError:
		return nil
	case pMember:
		return &ast.PropertyRef{NodeInfo: r.info(), Member: r.expr(0), Name: r.ident(2)}
	case pIndex:
		return &ast.MemberIndexer{NodeInfo: r.info(), Member: r.expr(0), Index: r.expr(2)}
	case pCallEmpty:
		return &ast.FunctionCall{NodeInfo: r.info(), Name: r.ident(0)}
	case pCall:
		return &ast.FunctionCall{NodeInfo: r.info(), Name: r.ident(0), Args: arg[[]ast.Expr](r, 2)}
	case pUDFCallEmpty:
		return &ast.FunctionCall{NodeInfo: r.info(), Name: r.ident(2), UDF: true}
	case pUDFCall:
		return &ast.FunctionCall{NodeInfo: r.info(), Name: r.ident(2), UDF: true, Args: arg[[]ast.Expr](r, 4)}
	case pExists:
		return &ast.Exists{NodeInfo: r.info(), Query: arg[*ast.Query](r, 2)}
	case pArraySubquery:
		return &ast.ArraySubquery{NodeInfo: r.info(), Query: arg[*ast.Query](r, 2)}
	}

	r.err = fmt.Errorf("%w %d", ErrUnknownProduction, int(r.prod))
	return nil
}
