package internal

import (
	"fmt"
)

// Parser compiles the tokens of one class straight into vm code. Every grammar rule has one
// compile method which consumes exactly the tokens of its construct and emits code for it:
// a statement leaves the operand stack as it found it, an expression or a term leaves one
// more value on it.
type Parser struct {
	unit            string
	currentTokens   []*Token
	currentTokenPos int
	symbols         *SymbolTable
	writer          *VMWriter
}

// subroutineContext names the subroutine being compiled. It is passed down to every statement
// and expression so that calls and labels can be qualified without parser state.
type subroutineContext struct {
	className string
	name      string
}

func (ctx subroutineContext) qualifiedName() string {
	return ctx.className + "." + ctx.name
}

// NewParser returns a parser for the tokens of the source unit called unit. Code goes to writer.
func NewParser(unit string, tokens []*Token, writer *VMWriter) *Parser {
	return &Parser{
		unit:          unit,
		currentTokens: tokens,
		symbols:       NewSymbolTable(),
		writer:        writer,
	}
}

// CompileClass compiles: class className '{' classVarDec* subroutineDec* '}'
// and returns the class name.
func (parser *Parser) CompileClass() (string, error) {
	if _, err := parser.expectKeyword(ClassKW); err != nil {
		return "", err
	}
	classNameToken, err := parser.expectIdentifier()
	if err != nil {
		return "", err
	}
	className := classNameToken.Lexeme
	if _, err = parser.expectSymbol('{'); err != nil {
		return "", err
	}
	for parser.peekKeyword(StaticKW, FieldKW) {
		if err = parser.compileClassVarDec(); err != nil {
			return "", err
		}
	}
	for parser.peekKeyword(ConstructorKW, FunctionKW, MethodKW) {
		if err = parser.compileSubroutine(className); err != nil {
			return "", err
		}
	}
	if !parser.peekSymbol('}') {
		return "", parser.makeError("'constructor', 'function', 'method' or '}'")
	}
	parser.stepForward()
	if parser.hasRemainTokens() {
		return "", parser.makeError("end of input")
	}
	return className, nil
}

// (static|field) type varName (',' varName)* ';'
func (parser *Parser) compileClassVarDec() error {
	token, err := parser.expectKeyword(StaticKW, FieldKW)
	if err != nil {
		return err
	}
	kind := FieldKind
	if token.IsKeyword(StaticKW) {
		kind = StaticKind
	}
	return parser.compileVarNames(kind)
}

// 'var' type varName (',' varName)* ';'
func (parser *Parser) compileVarDec() error {
	if _, err := parser.expectKeyword(VarKW); err != nil {
		return err
	}
	return parser.compileVarNames(VarKind)
}

func (parser *Parser) compileVarNames(kind Kind) error {
	typeToken, err := parser.expectType(false)
	if err != nil {
		return err
	}
	for {
		nameToken, err := parser.expectIdentifier()
		if err != nil {
			return err
		}
		if err = parser.define(nameToken, typeToken.Lexeme, kind); err != nil {
			return err
		}
		if !parser.peekSymbol(',') {
			break
		}
		parser.stepForward()
	}
	_, err = parser.expectSymbol(';')
	return err
}

// (constructor|function|method) (void|type) subroutineName '(' parameterList ')'
// '{' varDec* statements '}'
func (parser *Parser) compileSubroutine(className string) error {
	token, err := parser.expectKeyword(ConstructorKW, FunctionKW, MethodKW)
	if err != nil {
		return err
	}
	kind, _ := token.Keyword()
	parser.symbols.StartSubroutine()
	if kind == MethodKW {
		// The receiver is always argument 0 of a method.
		if _, err = parser.symbols.Define("this", className, ArgKind); err != nil {
			return err
		}
	}
	if _, err = parser.expectType(true); err != nil {
		return err
	}
	nameToken, err := parser.expectIdentifier()
	if err != nil {
		return err
	}
	ctx := subroutineContext{className: className, name: nameToken.Lexeme}
	if _, err = parser.expectSymbol('('); err != nil {
		return err
	}
	if err = parser.compileParameterList(); err != nil {
		return err
	}
	if _, err = parser.expectSymbol(')'); err != nil {
		return err
	}
	if _, err = parser.expectSymbol('{'); err != nil {
		return err
	}
	for parser.peekKeyword(VarKW) {
		if err = parser.compileVarDec(); err != nil {
			return err
		}
	}
	parser.writer.WriteFunction(ctx.qualifiedName(), parser.symbols.VarCount(VarKind))
	switch kind {
	case ConstructorKW:
		parser.writer.WritePush(ConstantSegment, parser.symbols.VarCount(FieldKind))
		parser.writer.WriteCall("Memory.alloc", 1)
		parser.writer.WritePop(PointerSegment, 0)
	case MethodKW:
		parser.writer.WritePush(ArgumentSegment, 0)
		parser.writer.WritePop(PointerSegment, 0)
	}
	if err = parser.compileStatements(ctx); err != nil {
		return err
	}
	_, err = parser.expectSymbol('}')
	return err
}

// ((type varName) (',' type varName)*)?
func (parser *Parser) compileParameterList() error {
	if parser.peekSymbol(')') {
		return nil
	}
	for {
		typeToken, err := parser.expectType(false)
		if err != nil {
			return err
		}
		nameToken, err := parser.expectIdentifier()
		if err != nil {
			return err
		}
		if err = parser.define(nameToken, typeToken.Lexeme, ArgKind); err != nil {
			return err
		}
		if !parser.peekSymbol(',') {
			return nil
		}
		parser.stepForward()
	}
}

// statement*, stops at the first token which cannot start a statement.
func (parser *Parser) compileStatements(ctx subroutineContext) error {
	for parser.hasRemainTokens() {
		kw, ok := parser.currentTokens[parser.currentTokenPos].Keyword()
		if !ok {
			return nil
		}
		var err error
		switch kw {
		case LetKW:
			err = parser.compileLet(ctx)
		case IfKW:
			err = parser.compileIf(ctx)
		case WhileKW:
			err = parser.compileWhile(ctx)
		case DoKW:
			err = parser.compileDo(ctx)
		case ReturnKW:
			err = parser.compileReturn(ctx)
		default:
			return nil
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// let varName ('[' expression ']')? '=' expression ';'
func (parser *Parser) compileLet(ctx subroutineContext) error {
	if _, err := parser.expectKeyword(LetKW); err != nil {
		return err
	}
	nameToken, err := parser.expectIdentifier()
	if err != nil {
		return err
	}
	entry, err := parser.resolve(ctx, nameToken)
	if err != nil {
		return err
	}
	isArray := parser.peekSymbol('[')
	if isArray {
		// The element address is computed before the right hand side, which may itself
		// use pointer 1.
		parser.stepForward()
		parser.writer.WritePush(entry.Kind.Segment(), entry.Index)
		if err = parser.compileExpression(ctx); err != nil {
			return err
		}
		if _, err = parser.expectSymbol(']'); err != nil {
			return err
		}
		parser.writer.WriteArithmetic(AddCmd)
	}
	if _, err = parser.expectSymbol('='); err != nil {
		return err
	}
	if err = parser.compileExpression(ctx); err != nil {
		return err
	}
	if _, err = parser.expectSymbol(';'); err != nil {
		return err
	}
	if !isArray {
		parser.writer.WritePop(entry.Kind.Segment(), entry.Index)
		return nil
	}
	parser.writer.WritePop(TempSegment, 0)
	parser.writer.WritePop(PointerSegment, 1)
	parser.writer.WritePush(TempSegment, 0)
	parser.writer.WritePop(ThatSegment, 0)
	return nil
}

// if '(' expression ')' '{' statements '}' (else '{' statements '}')?
//
// cond
// not
// if-goto IF_FALSE
// statements
// goto IF_END
// label IF_FALSE
// else statements
// label IF_END
func (parser *Parser) compileIf(ctx subroutineContext) error {
	if _, err := parser.expectKeyword(IfKW); err != nil {
		return err
	}
	if err := parser.compileCondition(ctx); err != nil {
		return err
	}
	falseLabel := parser.writer.NewLabel(ctx.qualifiedName(), "IF_FALSE")
	endLabel := parser.writer.NewLabel(ctx.qualifiedName(), "IF_END")
	parser.writer.WriteArithmetic(NotCmd)
	parser.writer.WriteIf(falseLabel)
	if err := parser.compileBlock(ctx); err != nil {
		return err
	}
	parser.writer.WriteGoto(endLabel)
	parser.writer.WriteLabel(falseLabel)
	if parser.peekKeyword(ElseKW) {
		parser.stepForward()
		if err := parser.compileBlock(ctx); err != nil {
			return err
		}
	}
	parser.writer.WriteLabel(endLabel)
	return nil
}

// while '(' expression ')' '{' statements '}'
//
// label WHILE_EXP
// cond
// not
// if-goto WHILE_END
// statements
// goto WHILE_EXP
// label WHILE_END
func (parser *Parser) compileWhile(ctx subroutineContext) error {
	if _, err := parser.expectKeyword(WhileKW); err != nil {
		return err
	}
	expLabel := parser.writer.NewLabel(ctx.qualifiedName(), "WHILE_EXP")
	endLabel := parser.writer.NewLabel(ctx.qualifiedName(), "WHILE_END")
	parser.writer.WriteLabel(expLabel)
	if err := parser.compileCondition(ctx); err != nil {
		return err
	}
	parser.writer.WriteArithmetic(NotCmd)
	parser.writer.WriteIf(endLabel)
	if err := parser.compileBlock(ctx); err != nil {
		return err
	}
	parser.writer.WriteGoto(expLabel)
	parser.writer.WriteLabel(endLabel)
	return nil
}

// '(' expression ')'
func (parser *Parser) compileCondition(ctx subroutineContext) error {
	if _, err := parser.expectSymbol('('); err != nil {
		return err
	}
	if err := parser.compileExpression(ctx); err != nil {
		return err
	}
	_, err := parser.expectSymbol(')')
	return err
}

// '{' statements '}'
func (parser *Parser) compileBlock(ctx subroutineContext) error {
	if _, err := parser.expectSymbol('{'); err != nil {
		return err
	}
	if err := parser.compileStatements(ctx); err != nil {
		return err
	}
	_, err := parser.expectSymbol('}')
	return err
}

// do subroutineCall ';'
// The returned value, even of a void subroutine, is dropped into temp 0.
func (parser *Parser) compileDo(ctx subroutineContext) error {
	if _, err := parser.expectKeyword(DoKW); err != nil {
		return err
	}
	nameToken, err := parser.expectIdentifier()
	if err != nil {
		return err
	}
	if err = parser.compileSubroutineCall(ctx, nameToken); err != nil {
		return err
	}
	if _, err = parser.expectSymbol(';'); err != nil {
		return err
	}
	parser.writer.WritePop(TempSegment, 0)
	return nil
}

// return expression? ';'
// A void return still pushes 0 so every call leaves exactly one value.
func (parser *Parser) compileReturn(ctx subroutineContext) error {
	if _, err := parser.expectKeyword(ReturnKW); err != nil {
		return err
	}
	if parser.peekSymbol(';') {
		parser.writer.WritePush(ConstantSegment, 0)
	} else if err := parser.compileExpression(ctx); err != nil {
		return err
	}
	if _, err := parser.expectSymbol(';'); err != nil {
		return err
	}
	parser.writer.WriteReturn()
	return nil
}

func (parser *Parser) define(nameToken *Token, typ string, kind Kind) error {
	if _, err := parser.symbols.Define(nameToken.Lexeme, typ, kind); err != nil {
		return fmt.Errorf("Parser: %s:%d:%d: %w", parser.unit, nameToken.Line, nameToken.Column, err)
	}
	return nil
}

func (parser *Parser) resolve(ctx subroutineContext, nameToken *Token) (Entry, error) {
	entry, ok := parser.symbols.Lookup(nameToken.Lexeme)
	if !ok {
		return Entry{}, &UndefinedSymbolError{
			Unit:       parser.unit,
			Subroutine: ctx.qualifiedName(),
			Name:       nameToken.Lexeme,
			Line:       nameToken.Line,
			Column:     nameToken.Column,
		}
	}
	return entry, nil
}

func (parser *Parser) stepForward() {
	parser.currentTokenPos++
}

func (parser *Parser) hasRemainTokens() bool {
	return parser.currentTokenPos < len(parser.currentTokens)
}

// peek returns the current token, nil at end of input.
func (parser *Parser) peek() *Token {
	if !parser.hasRemainTokens() {
		return nil
	}
	return parser.currentTokens[parser.currentTokenPos]
}

func (parser *Parser) peekSymbol(symbol byte) bool {
	token := parser.peek()
	return token != nil && token.IsSymbol(symbol)
}

func (parser *Parser) peekKeyword(kws ...Keyword) bool {
	token := parser.peek()
	return token != nil && token.IsKeyword(kws...)
}

func (parser *Parser) expectSymbol(symbol byte) (*Token, error) {
	if !parser.peekSymbol(symbol) {
		return nil, parser.makeError(fmt.Sprintf("'%c'", symbol))
	}
	token := parser.peek()
	parser.stepForward()
	return token, nil
}

func (parser *Parser) expectKeyword(kws ...Keyword) (*Token, error) {
	if !parser.peekKeyword(kws...) {
		return nil, parser.makeError(keywordList(kws))
	}
	token := parser.peek()
	parser.stepForward()
	return token, nil
}

func (parser *Parser) expectIdentifier() (*Token, error) {
	token := parser.peek()
	if token == nil || token.Kind != IdentifierKind {
		return nil, parser.makeError("identifier")
	}
	parser.stepForward()
	return token, nil
}

// expectType accepts int, char, boolean or a class name, and void when allowVoid is set.
func (parser *Parser) expectType(allowVoid bool) (*Token, error) {
	token := parser.peek()
	switch {
	case token == nil:
	case token.Kind == IdentifierKind, token.IsKeyword(IntKW, CharKW, BooleanKW):
		parser.stepForward()
		return token, nil
	case allowVoid && token.IsKeyword(VoidKW):
		parser.stepForward()
		return token, nil
	}
	if allowVoid {
		return nil, parser.makeError("'void' or type")
	}
	return nil, parser.makeError("type")
}

func (parser *Parser) makeError(expected string) error {
	return &ParseError{Unit: parser.unit, Expected: expected, Found: parser.peek()}
}

func keywordList(kws []Keyword) string {
	s := ""
	for i, kw := range kws {
		switch {
		case i == 0:
		case i == len(kws)-1:
			s += " or "
		default:
			s += ", "
		}
		s += "'" + kw.String() + "'"
	}
	return s
}
