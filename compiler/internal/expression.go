package internal

import (
	"strconv"
)

// operation is the vm code of a binary operator: either a vm command or a call to an os
// function taking both operands.
type operation struct {
	cmd  Command
	call string
}

// binaryOperation maps an operator symbol to its vm code.
func binaryOperation(symbol byte) (operation, bool) {
	switch symbol {
	case '+':
		return operation{cmd: AddCmd}, true
	case '-':
		return operation{cmd: SubCmd}, true
	case '=':
		return operation{cmd: EqCmd}, true
	case '>':
		return operation{cmd: GtCmd}, true
	case '<':
		return operation{cmd: LtCmd}, true
	case '&':
		return operation{cmd: AndCmd}, true
	case '|':
		return operation{cmd: OrCmd}, true
	case '*':
		return operation{call: "Math.multiply"}, true
	case '/':
		return operation{call: "Math.divide"}, true
	}
	return operation{}, false
}

func unaryOperation(symbol byte) (Command, bool) {
	switch symbol {
	case '-':
		return NegCmd, true
	case '~':
		return NotCmd, true
	}
	return "", false
}

func (op operation) emit(writer *VMWriter) {
	if op.call != "" {
		writer.WriteCall(op.call, 2)
		return
	}
	writer.WriteArithmetic(op.cmd)
}

// compileExpression compiles term (op term)*. Jack has no operator priority, operators apply
// left to right once both operands are on the stack.
func (parser *Parser) compileExpression(ctx subroutineContext) error {
	if err := parser.compileTerm(ctx); err != nil {
		return err
	}
	for {
		token := parser.peek()
		if token == nil {
			return nil
		}
		op, ok := binaryOperation(token.Symbol())
		if !ok {
			return nil
		}
		parser.stepForward()
		if err := parser.compileTerm(ctx); err != nil {
			return err
		}
		op.emit(parser.writer)
	}
}

// compileTerm pushes exactly one value. A term is one of
// integerConstant | stringConstant | keywordConstant | varName | varName '[' expression ']' |
// subroutineCall | '(' expression ')' | unaryOp term.
func (parser *Parser) compileTerm(ctx subroutineContext) error {
	token := parser.peek()
	if token == nil {
		return parser.makeError("term")
	}
	switch token.Kind {
	case IntConstKind:
		value, err := strconv.Atoi(token.Lexeme)
		if err != nil {
			return parser.makeError("integer constant")
		}
		parser.stepForward()
		parser.writer.WritePush(ConstantSegment, value)
		return nil
	case StringConstKind:
		parser.stepForward()
		parser.compileStringConstant(token.Lexeme)
		return nil
	case KeywordKind:
		return parser.compileKeywordConstant(token)
	case SymbolKind:
		return parser.compileSymbolTerm(ctx, token)
	case IdentifierKind:
		parser.stepForward()
		switch {
		case parser.peekSymbol('['):
			return parser.compileArrayElement(ctx, token)
		case parser.peekSymbol('('), parser.peekSymbol('.'):
			return parser.compileSubroutineCall(ctx, token)
		}
		entry, err := parser.resolve(ctx, token)
		if err != nil {
			return err
		}
		parser.writer.WritePush(entry.Kind.Segment(), entry.Index)
		return nil
	}
	return parser.makeError("term")
}

// String.new(len) followed by one String.appendChar per character. appendChar returns the
// string, so the reference stays on the stack.
func (parser *Parser) compileStringConstant(s string) {
	parser.writer.WritePush(ConstantSegment, len(s))
	parser.writer.WriteCall("String.new", 1)
	for i := 0; i < len(s); i++ {
		parser.writer.WritePush(ConstantSegment, int(s[i]))
		parser.writer.WriteCall("String.appendChar", 2)
	}
}

func (parser *Parser) compileKeywordConstant(token *Token) error {
	kw, _ := token.Keyword()
	switch kw {
	case TrueKW:
		parser.writer.WritePush(ConstantSegment, 1)
		parser.writer.WriteArithmetic(NegCmd)
	case FalseKW, NullKW:
		parser.writer.WritePush(ConstantSegment, 0)
	case ThisKW:
		parser.writer.WritePush(PointerSegment, 0)
	default:
		return parser.makeError("'true', 'false', 'null' or 'this'")
	}
	parser.stepForward()
	return nil
}

// '(' expression ')' | unaryOp term
func (parser *Parser) compileSymbolTerm(ctx subroutineContext, token *Token) error {
	if token.IsSymbol('(') {
		parser.stepForward()
		if err := parser.compileExpression(ctx); err != nil {
			return err
		}
		_, err := parser.expectSymbol(')')
		return err
	}
	cmd, ok := unaryOperation(token.Symbol())
	if !ok {
		return parser.makeError("term")
	}
	parser.stepForward()
	if err := parser.compileTerm(ctx); err != nil {
		return err
	}
	parser.writer.WriteArithmetic(cmd)
	return nil
}

// varName '[' expression ']', the name token is already consumed.
//
// push base
// index expression
// add
// pop pointer 1
// push that 0
func (parser *Parser) compileArrayElement(ctx subroutineContext, nameToken *Token) error {
	entry, err := parser.resolve(ctx, nameToken)
	if err != nil {
		return err
	}
	if _, err = parser.expectSymbol('['); err != nil {
		return err
	}
	parser.writer.WritePush(entry.Kind.Segment(), entry.Index)
	if err = parser.compileExpression(ctx); err != nil {
		return err
	}
	if _, err = parser.expectSymbol(']'); err != nil {
		return err
	}
	parser.writer.WriteArithmetic(AddCmd)
	parser.writer.WritePop(PointerSegment, 1)
	parser.writer.WritePush(ThatSegment, 0)
	return nil
}

// compileSubroutineCall compiles a call whose first identifier is already consumed:
//   - name(args): a method of the current class, called on this.
//   - var.name(args): a method called on the object held by a known variable.
//   - Class.name(args): a function or constructor, no receiver.
func (parser *Parser) compileSubroutineCall(ctx subroutineContext, first *Token) error {
	if parser.peekSymbol('(') {
		parser.writer.WritePush(PointerSegment, 0)
		nArgs, err := parser.compileArgumentList(ctx)
		if err != nil {
			return err
		}
		parser.writer.WriteCall(ctx.className+"."+first.Lexeme, nArgs+1)
		return nil
	}
	if _, err := parser.expectSymbol('.'); err != nil {
		return parser.makeError("'(' or '.'")
	}
	nameToken, err := parser.expectIdentifier()
	if err != nil {
		return err
	}
	receiver, isVar := parser.symbols.Lookup(first.Lexeme)
	if !isVar {
		nArgs, err := parser.compileArgumentList(ctx)
		if err != nil {
			return err
		}
		parser.writer.WriteCall(first.Lexeme+"."+nameToken.Lexeme, nArgs)
		return nil
	}
	parser.writer.WritePush(receiver.Kind.Segment(), receiver.Index)
	nArgs, err := parser.compileArgumentList(ctx)
	if err != nil {
		return err
	}
	parser.writer.WriteCall(receiver.Type+"."+nameToken.Lexeme, nArgs+1)
	return nil
}

// '(' expressionList ')', returns the number of arguments pushed.
func (parser *Parser) compileArgumentList(ctx subroutineContext) (int, error) {
	if _, err := parser.expectSymbol('('); err != nil {
		return 0, err
	}
	nArgs := 0
	if !parser.peekSymbol(')') {
		for {
			if err := parser.compileExpression(ctx); err != nil {
				return 0, err
			}
			nArgs++
			if !parser.peekSymbol(',') {
				break
			}
			parser.stepForward()
		}
	}
	if _, err := parser.expectSymbol(')'); err != nil {
		return 0, err
	}
	return nArgs, nil
}
