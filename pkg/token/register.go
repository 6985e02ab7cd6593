package token

import "sort"

// keywordNames is indexed by kind - AND; the order must match the keyword
// block in token.go.
var keywordNames = [...]string{
	"AND", "ARRAY", "AS", "ASC", "BETWEEN", "BY", "CASE", "CAST", "CONVERT",
	"CROSS", "DESC", "DISTINCT", "ELSE", "END", "ESCAPE", "EXISTS", "FALSE",
	"FOR", "FROM", "GROUP", "HAVING", "IN", "INNER", "INSERT", "INTO", "IS",
	"JOIN", "LEFT", "LIKE", "LIMIT", "NOT", "NULL", "OFFSET", "ON", "OR",
	"ORDER", "OUTER", "OVER", "RIGHT", "SELECT", "SET", "THEN", "TOP", "TRUE",
	"UDF", "UNDEFINED", "UPDATE", "VALUE", "WHEN", "WHERE", "WITH",
}

// Compile-time check that keywordNames covers every keyword kind.
var _ = [1]struct{}{}[len(keywordNames)-int(keywordLast-keywordFirst+1)]

// keywords maps upper-case keyword text to its kind.
var keywords = func() map[string]Kind {
	m := make(map[string]Kind, len(keywordNames))
	for i, name := range keywordNames {
		m[name] = keywordFirst + Kind(i)
	}
	return m
}()

// maxKeywordLen bounds the stack buffer used by LookupKeyword.
const maxKeywordLen = 16

// softKeywords are keywords the parser may fold into identifiers in states
// where the keyword reading has no action.
var softKeywords = map[Kind]struct{}{
	VALUE:  {},
	ASC:    {},
	DESC:   {},
	ESCAPE: {},
	FOR:    {},
	OVER:   {},
	SET:    {},
	LEFT:   {},
	RIGHT:  {},
	INNER:  {},
	OUTER:  {},
	CROSS:  {},
}

// LookupKeyword returns the keyword kind for word, matched case-insensitively.
// It does not allocate.
func LookupKeyword(word string) (Kind, bool) {
	if len(word) > maxKeywordLen || len(word) < 2 {
		return IDENT, false
	}
	var buf [maxKeywordLen]byte
	for i := 0; i < len(word); i++ {
		c := word[i]
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		buf[i] = c
	}
	if k, ok := keywords[string(buf[:len(word)])]; ok {
		return k, true
	}
	return IDENT, false
}

// IsSoftKeyword reports whether k may stand in for an identifier where the
// grammar has no use for the keyword.
func (k Kind) IsSoftKeyword() bool {
	_, ok := softKeywords[k]
	return ok
}

// SoftKeywords returns the soft keyword kinds in ascending order.
func SoftKeywords() []Kind {
	out := make([]Kind, 0, len(softKeywords))
	for k := range softKeywords {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Keywords returns every keyword in alphabetical order.
func Keywords() []string {
	out := make([]string, len(keywordNames))
	copy(out, keywordNames[:])
	return out
}
