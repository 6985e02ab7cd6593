// Package scanner turns Cosmos SQL text into tokens.
//
// The scanner reads the text through a two-ended cursor: atomStart marks the
// first byte of the token being built and atomEnd the next byte to read.
// Every token spans [atomStart, atomEnd) when it is emitted, so consecutive
// tokens, trivia included, tile the input exactly.
//
// Scanning never fails. Malformed numbers and strings and stray characters
// come out as ILLEGAL_NUMBER, ILLEGAL_STRING and ILLEGAL tokens, leaving the
// parser to decide how to report them. Apart from interning identifier text
// and decoding escaped strings, Scan does not allocate.
package scanner

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf16"
	"unicode/utf8"

	"fortio.org/safecast"
	"github.com/leapstack-labs/cosmosql/pkg/token"
)

// eof is returned by read at the end of the text.
const eof rune = -1

// Scanner produces tokens from a read-only text buffer.
type Scanner struct {
	text      string
	atomStart int
	atomEnd   int
	lastWidth int // width of the most recent read, for UndoRead
	cache     *TextCache
}

// New returns a scanner over text. Interned text is stored in cache; a nil
// cache gets a private one.
func New(text string, cache *TextCache) *Scanner {
	if cache == nil {
		cache = NewTextCache()
	}
	return &Scanner{text: text, cache: cache}
}

// All scans text to the end and returns every token, trivia included. The
// final token is EOF.
func All(text string) []token.Token {
	s := New(text, nil)
	var toks []token.Token
	for {
		tok := s.Scan()
		toks = append(toks, tok)
		if tok.Kind == token.EOF {
			return toks
		}
	}
}

// StartNewAtom begins a new token at the current read position.
func (s *Scanner) StartNewAtom() {
	s.atomStart = s.atomEnd
	s.lastWidth = 0
}

// read consumes one rune, or returns eof at the end of the text.
func (s *Scanner) read() rune {
	if s.atomEnd >= len(s.text) {
		s.lastWidth = 0
		return eof
	}
	if c := s.text[s.atomEnd]; c < utf8.RuneSelf {
		s.atomEnd++
		s.lastWidth = 1
		return rune(c)
	}
	r, w := utf8.DecodeRuneInString(s.text[s.atomEnd:])
	s.atomEnd += w
	s.lastWidth = w
	return r
}

// UndoRead steps back over the most recent read. It never moves before the
// start of the current atom and undoes at most one read.
func (s *Scanner) UndoRead() {
	s.atomEnd = max(s.atomEnd-s.lastWidth, s.atomStart)
	s.lastWidth = 0
}

// mark and reset let the scanner back out of a multi-rune lookahead.
func (s *Scanner) mark() int { return s.atomEnd }

func (s *Scanner) reset(m int) {
	s.atomEnd = max(m, s.atomStart)
	s.lastWidth = 0
}

// raw returns the text of the current atom.
func (s *Scanner) raw() string {
	return s.text[s.atomStart:s.atomEnd]
}

func (s *Scanner) span() token.Span {
	return token.Span{Start: offset(s.atomStart), End: offset(s.atomEnd)}
}

func offset(i int) uint64 {
	u, err := safecast.Conv[uint64](i)
	if err != nil {
		panic(fmt.Errorf("scanner offset overflow: %w", err))
	}
	return u
}

func (s *Scanner) emit(kind token.Kind) token.Token {
	return token.Token{Kind: kind, Span: s.span()}
}

func (s *Scanner) emitText(kind token.Kind, text string) token.Token {
	return token.Token{Kind: kind, Span: s.span(), Text: text}
}

func (s *Scanner) emitValue(kind token.Kind, v token.Value) token.Token {
	return token.Token{Kind: kind, Span: s.span(), Value: v}
}

// Scan returns the next token. At the end of the text it returns EOF with
// an empty span, and keeps doing so on further calls.
func (s *Scanner) Scan() token.Token {
	s.StartNewAtom()
	r := s.read()

	switch {
	case r == eof:
		return s.emit(token.EOF)
	case isSpace(r):
		s.skip(isSpace)
		return s.emit(token.WHITESPACE)
	case isIdentStart(r):
		return s.scanIdentifier()
	case isDigit(r):
		return s.scanNumber(r)
	}

	switch r {
	case '\'', '"':
		return s.scanString(r)
	case '@':
		if isIdentStart(s.read()) {
			s.skip(isIdentPart)
			return s.emitText(token.PARAM, s.cache.Intern(s.raw()))
		}
		s.UndoRead()
		return s.emit(token.ILLEGAL)
	case '.':
		if isDigit(s.read()) {
			return s.scanNumber('.')
		}
		s.UndoRead()
		return s.emit(token.DOT)
	case '-':
		if s.read() == '-' {
			s.skip(func(r rune) bool { return r != '\n' })
			return s.emit(token.COMMENT)
		}
		s.UndoRead()
		return s.emit(token.MINUS)
	case '<':
		switch s.read() {
		case '=':
			return s.emit(token.LE)
		case '>':
			return s.emit(token.NE)
		case '<':
			return s.emit(token.LSHIFT)
		}
		s.UndoRead()
		return s.emit(token.LT)
	case '>':
		switch s.read() {
		case '=':
			return s.emit(token.GE)
		case '>':
			if s.read() == '>' {
				return s.emit(token.URSHIFT)
			}
			s.UndoRead()
			return s.emit(token.RSHIFT)
		}
		s.UndoRead()
		return s.emit(token.GT)
	case '|':
		return s.pair('|', token.DPIPE, token.PIPE)
	case '?':
		return s.pair('?', token.COALESCE, token.QUESTION)
	case '!':
		return s.pair('=', token.NE, token.ILLEGAL)
	case ',', ':', '{', '}', '[', ']', '(', ')', '+', '*', '/', '%', '~', '&', '^', '=':
		return s.emit(token.Kind(r))
	}
	return s.emit(token.ILLEGAL)
}

// pair emits long if the next rune is next, otherwise short.
func (s *Scanner) pair(next rune, long, short token.Kind) token.Token {
	if s.read() == next {
		return s.emit(long)
	}
	s.UndoRead()
	return s.emit(short)
}

// skip consumes runes while pred holds.
func (s *Scanner) skip(pred func(rune) bool) {
	for {
		r := s.read()
		if r == eof {
			return
		}
		if !pred(r) {
			s.UndoRead()
			return
		}
	}
}

func (s *Scanner) scanIdentifier() token.Token {
	s.skip(isIdentPart)
	raw := s.raw()
	text := s.cache.Intern(raw)
	if kw, ok := token.LookupKeyword(raw); ok {
		return s.emitText(kw, text)
	}
	return s.emitText(token.IDENT, text)
}

// scanNumber scans a numeric literal whose first rune, a digit or a dot
// already known to be followed by a digit, has been consumed.
func (s *Scanner) scanNumber(first rune) token.Token {
	if first == '0' {
		if r := s.read(); r == 'x' || r == 'X' {
			return s.scanHex()
		}
		s.UndoRead()
	}

	isFloat := first == '.'
	s.skip(isDigit)

	if !isFloat {
		m := s.mark()
		if s.read() == '.' && isDigit(s.read()) {
			isFloat = true
			s.skip(isDigit)
		} else {
			s.reset(m)
		}
	}

	m := s.mark()
	if r := s.read(); r == 'e' || r == 'E' {
		r = s.read()
		if r == '+' || r == '-' {
			r = s.read()
		}
		if !isDigit(r) {
			s.UndoRead()
			return s.emit(token.ILLEGAL_NUMBER)
		}
		isFloat = true
		s.skip(isDigit)
	} else {
		s.reset(m)
	}

	text := s.raw()
	if !isFloat {
		if v, ok := parseDecimal(text); ok {
			switch {
			case v <= math.MaxInt64:
				return s.emitValue(token.NUMBER, token.IntValue(int64(v))) //nolint:gosec // bounded above
			case v == 1<<63:
				return s.emitValue(token.NUMBER_MIN, token.FloatValue(1<<63))
			}
		}
	}

	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return s.emit(token.ILLEGAL_NUMBER)
	}
	return s.emitValue(token.NUMBER, token.FloatValue(f))
}

// parseDecimal accumulates decimal digits into a uint64, reporting false on
// overflow. It avoids strconv so the common case never allocates an error.
func parseDecimal(digits string) (uint64, bool) {
	var v uint64
	for i := 0; i < len(digits); i++ {
		d := uint64(digits[i] - '0')
		if v > (math.MaxUint64-d)/10 {
			return 0, false
		}
		v = v*10 + d
	}
	return v, true
}

// scanHex scans the digits of a 0x literal. The value must fit in int64.
func (s *Scanner) scanHex() token.Token {
	var v uint64
	n := 0
	overflow := false
	for {
		d, ok := hexDigit(s.read())
		if !ok {
			s.UndoRead()
			break
		}
		n++
		if v > (math.MaxInt64-d)>>4 {
			overflow = true
			continue
		}
		v = v<<4 | d
	}
	if n == 0 || overflow {
		return s.emit(token.ILLEGAL_NUMBER)
	}
	return s.emitValue(token.NUMBER, token.IntValue(int64(v))) //nolint:gosec // bounded by the overflow check
}

// scanString scans a literal delimited by quote. Escapes follow JSON; a
// doubled quote is not an escape and ends the literal.
func (s *Scanner) scanString(quote rune) token.Token {
	escaped, bad := false, false
loop:
	for {
		switch r := s.read(); r {
		case eof:
			return s.emit(token.ILLEGAL_STRING)
		case quote:
			break loop
		case '\\':
			escaped = true
			switch e := s.read(); e {
			case '"', '\'', '\\', '/', 'b', 'f', 'n', 'r', 't':
			case 'u':
				for i := 0; i < 4; i++ {
					if _, ok := hexDigit(s.read()); !ok {
						s.UndoRead()
						bad = true
						break
					}
				}
			case eof:
				return s.emit(token.ILLEGAL_STRING)
			default:
				bad = true
			}
		}
	}

	if bad {
		return s.emit(token.ILLEGAL_STRING)
	}
	raw := s.raw()
	body := raw[1 : len(raw)-1]
	if !escaped {
		return s.emitText(token.STRING, s.cache.Intern(body))
	}
	if text, ok := s.cache.Lookup(raw); ok {
		return s.emitText(token.STRING, text)
	}
	return s.emitText(token.STRING, s.cache.Store(raw, unescape(body)))
}

// unescape decodes the JSON escapes of a literal body already validated by
// scanString.
func unescape(body string) string {
	var b strings.Builder
	b.Grow(len(body))
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		i++
		switch body[i] {
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		case 'u':
			r := hex4(body[i+1 : i+5])
			i += 4
			if utf16.IsSurrogate(r) && i+6 < len(body) && body[i+1] == '\\' && body[i+2] == 'u' {
				if pair := utf16.DecodeRune(r, hex4(body[i+3:i+7])); pair != utf8.RuneError {
					r = pair
					i += 6
				}
			}
			b.WriteRune(r)
		default:
			b.WriteByte(body[i])
		}
	}
	return b.String()
}

func hex4(s string) rune {
	var r rune
	for i := 0; i < len(s); i++ {
		d, _ := hexDigit(rune(s[i]))
		r = r<<4 | rune(d) //nolint:gosec // single hex digit
	}
	return r
}

func hexDigit(r rune) (uint64, bool) {
	switch {
	case r >= '0' && r <= '9':
		return uint64(r - '0'), true
	case r >= 'a' && r <= 'f':
		return uint64(r-'a') + 10, true
	case r >= 'A' && r <= 'F':
		return uint64(r-'A') + 10, true
	}
	return 0, false
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isSpace(r rune) bool {
	if r < utf8.RuneSelf {
		return r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\f' || r == '\v'
	}
	return unicode.IsSpace(r)
}

func isIdentStart(r rune) bool {
	if r < utf8.RuneSelf {
		return r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
	}
	return unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	if r < utf8.RuneSelf {
		return isIdentStart(r) || isDigit(r)
	}
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
