// Package syntax holds the Cosmos SQL grammar and the reduction actions that
// build AST nodes from it.
//
// Productions are listed in one table indexed by Production, so the rule
// numbers assigned by the table builder are exactly the Production values
// the dispatcher switches on.
package syntax

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/cosmosql/pkg/grammar"
	"github.com/leapstack-labs/cosmosql/pkg/token"
)

// GrammarName names the grammar in tables and reports.
const GrammarName = "cosmosql"

// Production identifies one rule of the grammar.
type Production int

//nolint:revive // production names mirror the grammar
const (
	pQuery Production = iota + 1

	pSelectClause
	pDistinctNone
	pDistinct
	pTopNone
	pTop
	pCountNumber
	pCountParam
	pSelectStar
	pSelectValue
	pSelectList
	pSelectListFirst
	pSelectListNext
	pSelectItem
	pSelectItemAlias
	pSelectItemError

	pFromNone
	pFrom
	pAliased
	pAliasedAs
	pAliasedBare
	pIterator
	pJoin
	pInputPath
	pSubqueryCollection
	pPathNone
	pPathIdent
	pPathNumber
	pPathString

	pWhereNone
	pWhere
	pGroupByNone
	pGroupBy
	pOrderByNone
	pOrderBy
	pOrderItemsFirst
	pOrderItemsNext
	pOrderItem
	pOrderItemAsc
	pOrderItemDesc
	pOffsetLimitNone
	pOffsetLimit

	pScalarListFirst
	pScalarListNext
	pConditional
	pCoalesce
	pScalarLogical
	pLogicalBinary
	pIn
	pNotIn
	pLike
	pNotLike
	pBetween
	pNotBetween
	pAnd
	pOr
	pEscapeNone
	pEscape

	pBinaryUnary
	pEq
	pNe
	pLt
	pLe
	pGt
	pGe
	pBitOr
	pBitXor
	pBitAnd
	pLshift
	pRshift
	pURshift
	pConcat
	pAdd
	pSub
	pMul
	pDiv
	pMod

	pUnaryPrimary
	pNeg
	pPos
	pBitNot
	pNot

	pIdent
	pParam
	pNumber
	pNumberMin
	pString
	pTrue
	pFalse
	pNull
	pUndefined
	pArrayEmpty
	pArray
	pObjectEmpty
	pObject
	pPropsFirst
	pPropsNext
	pProp
	pParen
	pSubquery
	pParenError
	pMember
	pIndex
	pCallEmpty
	pCall
	pUDFCallEmpty
	pUDFCall
	pExists
	pArraySubquery

	numProductions
)

type production struct {
	lhs, body string
}

var productions = [numProductions]production{
	pQuery: {"query", "select_clause from_opt where_opt group_by_opt order_by_opt offset_limit_opt"},

	pSelectClause:    {"select_clause", "SELECT distinct_opt top_opt selection"},
	pDistinctNone:    {"distinct_opt", ""},
	pDistinct:        {"distinct_opt", "DISTINCT"},
	pTopNone:         {"top_opt", ""},
	pTop:             {"top_opt", "TOP count"},
	pCountNumber:     {"count", "NUMBER"},
	pCountParam:      {"count", "PARAM"},
	pSelectStar:      {"selection", "'*'"},
	pSelectValue:     {"selection", "VALUE scalar"},
	pSelectList:      {"selection", "select_list"},
	pSelectListFirst: {"select_list", "select_item"},
	pSelectListNext:  {"select_list", "select_list ',' select_item"},
	pSelectItem:      {"select_item", "scalar"},
	pSelectItemAlias: {"select_item", "scalar AS IDENT"},
	pSelectItemError: {"select_item", "error"},

	pFromNone:           {"from_opt", ""},
	pFrom:               {"from_opt", "FROM collection_expr"},
	pAliased:            {"collection_expr", "collection"},
	pAliasedAs:          {"collection_expr", "collection AS IDENT"},
	pAliasedBare:        {"collection_expr", "collection IDENT"},
	pIterator:           {"collection_expr", "IDENT IN collection"},
	pJoin:               {"collection_expr", "collection_expr JOIN collection_expr"},
	pInputPath:          {"collection", "IDENT path"},
	pSubqueryCollection: {"collection", "'(' query ')'"},
	pPathNone:           {"path", ""},
	pPathIdent:          {"path", "path '.' IDENT"},
	pPathNumber:         {"path", "path '[' NUMBER ']'"},
	pPathString:         {"path", "path '[' STRING ']'"},

	pWhereNone:       {"where_opt", ""},
	pWhere:           {"where_opt", "WHERE scalar"},
	pGroupByNone:     {"group_by_opt", ""},
	pGroupBy:         {"group_by_opt", "GROUP BY scalar_list"},
	pOrderByNone:     {"order_by_opt", ""},
	pOrderBy:         {"order_by_opt", "ORDER BY order_items"},
	pOrderItemsFirst: {"order_items", "order_item"},
	pOrderItemsNext:  {"order_items", "order_items ',' order_item"},
	pOrderItem:       {"order_item", "scalar"},
	pOrderItemAsc:    {"order_item", "scalar ASC"},
	pOrderItemDesc:   {"order_item", "scalar DESC"},
	pOffsetLimitNone: {"offset_limit_opt", ""},
	pOffsetLimit:     {"offset_limit_opt", "OFFSET count LIMIT count"},

	pScalarListFirst: {"scalar_list", "scalar"},
	pScalarListNext:  {"scalar_list", "scalar_list ',' scalar"},
	pConditional:     {"scalar", "scalar '?' scalar ':' scalar"},
	pCoalesce:        {"scalar", "scalar COALESCE scalar"},
	pScalarLogical:   {"scalar", "logical"},
	pLogicalBinary:   {"logical", "binary"},
	pIn:              {"logical", "binary IN '(' scalar_list ')'"},
	pNotIn:           {"logical", "binary NOT IN '(' scalar_list ')'"},
	pLike:            {"logical", "binary LIKE binary escape_opt"},
	pNotLike:         {"logical", "binary NOT LIKE binary escape_opt"},
	pBetween:         {"logical", "binary BETWEEN binary AND binary"},
	pNotBetween:      {"logical", "binary NOT BETWEEN binary AND binary"},
	pAnd:             {"logical", "logical AND logical"},
	pOr:              {"logical", "logical OR logical"},
	pEscapeNone:      {"escape_opt", ""},
	pEscape:          {"escape_opt", "ESCAPE STRING"},

	pBinaryUnary: {"binary", "unary"},
	pEq:          {"binary", "binary '=' binary"},
	pNe:          {"binary", "binary NE binary"},
	pLt:          {"binary", "binary '<' binary"},
	pLe:          {"binary", "binary LE binary"},
	pGt:          {"binary", "binary '>' binary"},
	pGe:          {"binary", "binary GE binary"},
	pBitOr:       {"binary", "binary '|' binary"},
	pBitXor:      {"binary", "binary '^' binary"},
	pBitAnd:      {"binary", "binary '&' binary"},
	pLshift:      {"binary", "binary LSHIFT binary"},
	pRshift:      {"binary", "binary RSHIFT binary"},
	pURshift:     {"binary", "binary URSHIFT binary"},
	pConcat:      {"binary", "binary DPIPE binary"},
	pAdd:         {"binary", "binary '+' binary"},
	pSub:         {"binary", "binary '-' binary"},
	pMul:         {"binary", "binary '*' binary"},
	pDiv:         {"binary", "binary '/' binary"},
	pMod:         {"binary", "binary '%' binary"},

	pUnaryPrimary: {"unary", "primary"},
	pNeg:          {"unary", "'-' unary"},
	pPos:          {"unary", "'+' unary"},
	pBitNot:       {"unary", "'~' unary"},
	pNot:          {"unary", "NOT unary"},

	pIdent:         {"primary", "IDENT"},
	pParam:         {"primary", "PARAM"},
	pNumber:        {"primary", "NUMBER"},
	pNumberMin:     {"primary", "NUMBER_MIN"},
	pString:        {"primary", "STRING"},
	pTrue:          {"primary", "TRUE"},
	pFalse:         {"primary", "FALSE"},
	pNull:          {"primary", "NULL"},
	pUndefined:     {"primary", "UNDEFINED"},
	pArrayEmpty:    {"primary", "'[' ']'"},
	pArray:         {"primary", "'[' scalar_list ']'"},
	pObjectEmpty:   {"primary", "'{' '}'"},
	pObject:        {"primary", "'{' props '}'"},
	pPropsFirst:    {"props", "prop"},
	pPropsNext:     {"props", "props ',' prop"},
	pProp:          {"prop", "STRING ':' scalar"},
	pParen:         {"primary", "'(' scalar ')'"},
	pSubquery:      {"primary", "'(' query ')'"},
	pParenError:    {"primary", "'(' error ')'"},
	pMember:        {"primary", "primary '.' IDENT"},
	pIndex:         {"primary", "primary '[' scalar ']'"},
	pCallEmpty:     {"primary", "IDENT '(' ')'"},
	pCall:          {"primary", "IDENT '(' scalar_list ')'"},
	pUDFCallEmpty:  {"primary", "UDF '.' IDENT '(' ')'"},
	pUDFCall:       {"primary", "UDF '.' IDENT '(' scalar_list ')'"},
	pExists:        {"primary", "EXISTS '(' query ')'"},
	pArraySubquery: {"primary", "ARRAY '(' query ')'"},
}

// String returns the production in yacc notation.
func (p Production) String() string {
	if p <= 0 || p >= numProductions {
		return fmt.Sprintf("Production(%d)", int(p))
	}
	return grammar.Rule{LHS: productions[p].lhs, RHS: strings.Fields(productions[p].body)}.String()
}

var punctuation = []token.Kind{
	token.COMMA, token.COLON, token.LBRACE, token.RBRACE, token.LBRACKET,
	token.RBRACKET, token.LPAREN, token.RPAREN, token.PLUS, token.MINUS,
	token.STAR, token.SLASH, token.PERCENT, token.TILDE, token.AMP,
	token.CARET, token.PIPE, token.EQ, token.LT, token.GT, token.QUESTION,
	token.DOT,
}

var named = []token.Kind{
	token.IDENT, token.NUMBER, token.NUMBER_MIN, token.STRING, token.PARAM,
	token.NE, token.LE, token.GE, token.LSHIFT, token.RSHIFT, token.URSHIFT,
	token.DPIPE, token.COALESCE,
}

// namedSymbols are grammar names for named kinds whose Kind.String is the
// operator text.
var namedSymbols = map[token.Kind]string{
	token.NE:       "NE",
	token.LE:       "LE",
	token.GE:       "GE",
	token.LSHIFT:   "LSHIFT",
	token.RSHIFT:   "RSHIFT",
	token.URSHIFT:  "URSHIFT",
	token.DPIPE:    "DPIPE",
	token.COALESCE: "COALESCE",
}

// SymbolName returns the grammar name of a token kind: 'c' for
// punctuation, the upper-case name otherwise.
func SymbolName(k token.Kind) string {
	if k > 0 && k < 128 {
		return "'" + string(rune(k)) + "'"
	}
	if name, ok := namedSymbols[k]; ok {
		return name
	}
	return k.String()
}

// Grammar returns a fresh definition of the Cosmos SQL grammar.
func Grammar() *grammar.Grammar {
	g := grammar.New(GrammarName)

	for _, k := range punctuation {
		g.Token(SymbolName(k), k)
	}
	for _, k := range named {
		g.Token(SymbolName(k), k)
	}
	for _, word := range token.Keywords() {
		k, _ := token.LookupKeyword(word)
		g.Token(word, k)
	}

	// Lowest precedence first.
	g.Right("'?'", "':'")
	g.Left("COALESCE")
	g.Left("OR")
	g.Left("AND")
	g.Nonassoc("BETWEEN", "IN", "LIKE", "NOT")
	g.Left("'='", "NE")
	g.Left("'<'", "LE", "'>'", "GE")
	g.Left("'|'")
	g.Left("'^'")
	g.Left("'&'")
	g.Left("LSHIFT", "RSHIFT", "URSHIFT")
	g.Left("DPIPE")
	g.Left("'+'", "'-'")
	g.Left("'*'", "'/'", "'%'")
	g.Left("'.'", "'['")
	g.Left("JOIN")

	for p := pQuery; p < numProductions; p++ {
		if n := g.Rule(productions[p].lhs, productions[p].body); n != int(p) {
			panic(fmt.Sprintf("syntax: production %d registered as rule %d", p, n))
		}
	}

	for _, k := range token.SoftKeywords() {
		g.Fold(k.String(), SymbolName(token.IDENT))
	}
	return g.Start("query")
}
