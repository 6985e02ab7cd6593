package diag

import "fmt"

// Code identifies a diagnostic. Codes are partitioned into ranges by the
// phase that produces them, so the phase of any code is derivable from its
// value alone.
type Code uint16

// Phase is the processing stage a code belongs to.
type Phase uint8

// Phases.
const (
	PhaseUnknown Phase = iota
	PhaseParse
	PhaseBind
	PhaseCompile
	PhaseRuntime
)

const (
	UnknownCode Code = 0

	// Parse phase
	ParseInfo             Code = 1000
	IncorrectSyntax       Code = 1001
	UnexpectedEndOfInput  Code = 1002
	InvalidToken          Code = 1003
	InvalidNumericToken   Code = 1004
	InvalidStringToken    Code = 1005
	SelectStarWithoutFrom Code = 1006
	QueryTooComplex       Code = 1007
	StackOverflow         Code = 1008

	// Bind phase. Reserved for consumers of the syntax tree; the parser
	// never produces these.
	BindInfo              Code = 2000
	IdentifierNotResolved Code = 2001
	FunctionNotFound      Code = 2002
	ParameterNotDefined   Code = 2003

	// Compile phase
	CompileInfo           Code = 3000
	UnsupportedExpression Code = 3001

	// Runtime phase
	RuntimeInfo     Code = 4000
	RuntimeOverflow Code = 4001
)

// Phase derives the phase from the code's range.
func (c Code) Phase() Phase {
	switch {
	case c >= 1000 && c < 2000:
		return PhaseParse
	case c >= 2000 && c < 3000:
		return PhaseBind
	case c >= 3000 && c < 4000:
		return PhaseCompile
	case c >= 4000 && c < 5000:
		return PhaseRuntime
	}
	return PhaseUnknown
}

// String formats the code the way the query service reports it, e.g. SC1001.
func (c Code) String() string {
	return fmt.Sprintf("SC%04d", uint16(c))
}

// Title returns the fixed English description of the code.
func (c Code) Title() string {
	if t, ok := titles[c]; ok {
		return t
	}
	return "Unknown diagnostic"
}

var titles = map[Code]string{
	UnknownCode:           "Unknown diagnostic",
	ParseInfo:             "Parse information",
	IncorrectSyntax:       "Syntax error, incorrect syntax",
	UnexpectedEndOfInput:  "Syntax error, unexpected end of file",
	InvalidToken:          "Syntax error, invalid token",
	InvalidNumericToken:   "Syntax error, invalid numeric value token",
	InvalidStringToken:    "Syntax error, invalid string literal token",
	SelectStarWithoutFrom: "'SELECT *' is not valid if FROM clause is omitted",
	QueryTooComplex:       "The SQL query is too complex",
	StackOverflow:         "The SQL query exceeded the parser stack limit",
	BindInfo:              "Bind information",
	IdentifierNotResolved: "Identifier could not be resolved",
	FunctionNotFound:      "Function not found",
	ParameterNotDefined:   "Parameter is not defined",
	CompileInfo:           "Compile information",
	UnsupportedExpression: "Expression is not supported",
	RuntimeInfo:           "Runtime information",
	RuntimeOverflow:       "Arithmetic overflow",
}

func (p Phase) String() string {
	switch p {
	case PhaseParse:
		return "parse"
	case PhaseBind:
		return "bind"
	case PhaseCompile:
		return "compile"
	case PhaseRuntime:
		return "runtime"
	}
	return "unknown"
}
