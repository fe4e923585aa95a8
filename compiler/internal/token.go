package internal

import "fmt"

// Jack has five kinds of lexical elements:
// * KeyWord: class, constructor, function, method, field, static, var, int, char, boolean, void, true,
// 			false, null, this, let, do, if, else, while, return.
// * Symbol: {, }, (, ), [, ], ., ,, ;, +, -, *, /, &, |, <, >, =, ~.
// * IntConst: decimal 0..32767.
// * StringConst: "xxx", no escapes, no newline.
// * Identifier: letters, digits, underscore, not starting with a digit.

type TokenKind int

const (
	KeywordKind TokenKind = iota
	SymbolKind
	IdentifierKind
	IntConstKind
	StringConstKind
)

// String returns the element name used by the token xml format.
func (k TokenKind) String() string {
	switch k {
	case KeywordKind:
		return "keyword"
	case SymbolKind:
		return "symbol"
	case IdentifierKind:
		return "identifier"
	case IntConstKind:
		return "integerConstant"
	case StringConstKind:
		return "stringConstant"
	}
	return "unknown"
}

type Keyword int

const (
	ClassKW       Keyword = iota // class
	ConstructorKW                // constructor
	FunctionKW                   // function
	MethodKW                     // method
	FieldKW                      // field
	StaticKW                     // static
	VarKW                        // var
	IntKW                        // int
	CharKW                       // char
	BooleanKW                    // boolean
	VoidKW                       // void
	TrueKW                       // true
	FalseKW                      // false
	NullKW                       // null
	ThisKW                       // this
	LetKW                        // let
	DoKW                         // do
	IfKW                         // if
	ElseKW                       // else
	WhileKW                      // while
	ReturnKW                     // return
)

// keyWordMap is the mapping from a lexeme to the keyword it spells.
var keyWordMap = map[string]Keyword{
	"class":       ClassKW,
	"constructor": ConstructorKW,
	"function":    FunctionKW,
	"method":      MethodKW,
	"field":       FieldKW,
	"static":      StaticKW,
	"var":         VarKW,
	"int":         IntKW,
	"char":        CharKW,
	"boolean":     BooleanKW,
	"void":        VoidKW,
	"true":        TrueKW,
	"false":       FalseKW,
	"null":        NullKW,
	"this":        ThisKW,
	"let":         LetKW,
	"do":          DoKW,
	"if":          IfKW,
	"else":        ElseKW,
	"while":       WhileKW,
	"return":      ReturnKW,
}

var keyWordNames = func() map[Keyword]string {
	names := make(map[Keyword]string, len(keyWordMap))
	for name, kw := range keyWordMap {
		names[kw] = name
	}
	return names
}()

func (kw Keyword) String() string {
	return keyWordNames[kw]
}

// isSymbol reports whether b is one of the single character Jack symbols.
func isSymbol(b byte) bool {
	switch b {
	case '{', '}', '(', ')', '[', ']', '.', ',', ';', '+', '-', '*', '/', '&', '|', '<', '>', '=', '~':
		return true
	}
	return false
}

type Token struct {
	Lexeme string
	Kind   TokenKind
	Line   int
	Column int
}

// Keyword returns the keyword the token spells. ok is false for every non keyword token.
func (t *Token) Keyword() (kw Keyword, ok bool) {
	if t.Kind != KeywordKind {
		return 0, false
	}
	kw, ok = keyWordMap[t.Lexeme]
	return
}

func (t *Token) IsKeyword(kws ...Keyword) bool {
	kw, ok := t.Keyword()
	if !ok {
		return false
	}
	for _, want := range kws {
		if kw == want {
			return true
		}
	}
	return false
}

func (t *Token) IsSymbol(symbol byte) bool {
	return t.Kind == SymbolKind && len(t.Lexeme) == 1 && t.Lexeme[0] == symbol
}

func (t *Token) Symbol() byte {
	if t.Kind != SymbolKind || len(t.Lexeme) != 1 {
		return 0
	}
	return t.Lexeme[0]
}

func (t *Token) String() string {
	return fmt.Sprintf("%s '%s'", t.Kind, t.Lexeme)
}
