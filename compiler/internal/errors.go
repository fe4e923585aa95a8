package internal

import "fmt"

// LexError is returned by the tokenizer for input it cannot classify.
type LexError struct {
	Line   int
	Column int
	Near   string
	Msg    string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("Tokenizer: lex error near %q at %d:%d, msg: %s", e.Near, e.Line, e.Column, e.Msg)
}

// ParseError reports a token that does not fit the grammar. Found is nil at end of input.
type ParseError struct {
	Unit     string
	Expected string
	Found    *Token
}

func (e *ParseError) Error() string {
	if e.Found == nil {
		return fmt.Sprintf("Parser: %s: expected %s, found end of input", e.Unit, e.Expected)
	}
	return fmt.Sprintf("Parser: %s:%d:%d: expected %s, found %s", e.Unit, e.Found.Line, e.Found.Column,
		e.Expected, e.Found)
}

type UndefinedSymbolError struct {
	Unit       string
	Subroutine string
	Name       string
	Line       int
	Column     int
}

func (e *UndefinedSymbolError) Error() string {
	return fmt.Sprintf("Parser: %s:%d:%d: undefined symbol %s, not found in subroutine scope of %s nor in class scope",
		e.Unit, e.Line, e.Column, e.Name, e.Subroutine)
}

type RedeclarationError struct {
	Name  string
	Scope Scope
	Prev  Entry
}

func (e *RedeclarationError) Error() string {
	return fmt.Sprintf("SymbolTable: %s already declared in %s scope as %s %s %d", e.Name, e.Scope,
		e.Prev.Type, e.Prev.Kind, e.Prev.Index)
}

// SinkError wraps a failure to write emitted instructions to the output.
type SinkError struct {
	Err error
}

func (e *SinkError) Error() string {
	return fmt.Sprintf("VMWriter: cannot write output: %v", e.Err)
}

func (e *SinkError) Unwrap() error {
	return e.Err
}
