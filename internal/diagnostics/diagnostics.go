package diagnostics

import (
	"fmt"
	"sort"

	"github.com/funvibe/flowtype/internal/token"
)

type ErrorCode string

// Input (decoding) errors.
const (
	ErrP001 ErrorCode = "P001" // Malformed program or type document
)

// Analyzer errors reported by the flow engine.
const (
	ErrA001 ErrorCode = "A001" // Unbound local
	ErrA002 ErrorCode = "A002" // Type mismatch against expected type
	ErrA003 ErrorCode = "A003" // Loop binding without type annotation
	ErrA004 ErrorCode = "A004" // Recur arity does not match loop bindings
	ErrA005 ErrorCode = "A005" // Recur outside of loop
	ErrA006 ErrorCode = "A006" // Unknown function
	ErrA007 ErrorCode = "A007" // Call arity mismatch
)

var titles = map[ErrorCode]string{
	ErrP001: "malformed input",
	ErrA001: "unbound local",
	ErrA002: "type mismatch",
	ErrA003: "missing annotation",
	ErrA004: "recur arity",
	ErrA005: "recur outside loop",
	ErrA006: "unknown function",
	ErrA007: "call arity",
}

// Title returns a short human readable label for the code.
func (c ErrorCode) Title() string {
	if t, ok := titles[c]; ok {
		return t
	}
	return "error"
}

// DiagnosticError is a user-facing error with a source position.
type DiagnosticError struct {
	Code    ErrorCode
	Token   token.Token
	Message string
	File    string
}

func (e *DiagnosticError) Error() string {
	pos := e.Token.Pos()
	if e.File != "" {
		pos = e.File + ":" + pos
	}
	return fmt.Sprintf("%s: [%s] %s", pos, e.Code, e.Message)
}

func NewError(code ErrorCode, tok token.Token, message string) *DiagnosticError {
	return &DiagnosticError{Code: code, Token: tok, Message: message}
}

func NewErrorf(code ErrorCode, tok token.Token, format string, args ...interface{}) *DiagnosticError {
	return NewError(code, tok, fmt.Sprintf(format, args...))
}

// Set collects diagnostics, keeping one per line:col:code.
type Set struct {
	byKey map[string]*DiagnosticError
}

func (s *Set) Add(err *DiagnosticError) {
	if s.byKey == nil {
		s.byKey = make(map[string]*DiagnosticError)
	}
	key := fmt.Sprintf("%d:%d:%s", err.Token.Line, err.Token.Column, err.Code)
	if _, seen := s.byKey[key]; seen {
		return
	}
	s.byKey[key] = err
}

func (s *Set) Len() int { return len(s.byKey) }

// Sorted returns all diagnostics ordered by line, column, then code.
func (s *Set) Sorted() []*DiagnosticError {
	result := make([]*DiagnosticError, 0, len(s.byKey))
	for _, err := range s.byKey {
		result = append(result, err)
	}
	sort.Slice(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Token.Line != b.Token.Line {
			return a.Token.Line < b.Token.Line
		}
		if a.Token.Column != b.Token.Column {
			return a.Token.Column < b.Token.Column
		}
		return a.Code < b.Code
	})
	return result
}
