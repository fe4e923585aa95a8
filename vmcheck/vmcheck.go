// Package vmcheck reads hack vm code and verifies that it keeps the operand stack balanced.
package vmcheck

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

// There are four kinds of vm commands:
// * Memory access commands: push|pop segment index, where segment is one of argument, local, static,
// constant, this, that, pointer, temp.
// * Arithmetic commands: add, sub, neg, eq, gt, lt, and, or, not.
// * Program flow commands: label name, goto name, if-goto name.
// * Function calling commands: function name nLocals, call name nArgs, return.

type Command int

const (
	PushCmd Command = iota
	PopCmd
	ArithmeticCmd
	LabelCmd
	GotoCmd
	IfGotoCmd
	FunctionCmd
	CallCmd
	ReturnCmd
)

type KeyWordTP int

const (
	PushKeyWordTP KeyWordTP = iota
	PopKeyWordTP
	ArgumentKeyWordTP
	LocalKeyWordTP
	StaticKeyWordTP
	ConstantKeyWordTP
	ThisKeyWordTP
	ThatKeyWordTP
	PointerKeyWordTP
	TempKeyWordTP
	AddKeyWordTP
	SubKeyWordTP
	NegKeyWordTP
	EqKeyWordTP
	GtKeyWordTP
	LtKeyWordTP
	AndKeyWordTP
	OrKeyWordTP
	NotKeyWordTP
	LabelKeyWordTP
	IfGotoKeyWordTP
	GotoKeyWordTP
	FunctionKeyWordTP
	CallKeyWordTP
	ReturnKeyWordTP
)

var keyWordsMap = map[string]KeyWordTP{
	"PUSH":     PushKeyWordTP,
	"POP":      PopKeyWordTP,
	"ARGUMENT": ArgumentKeyWordTP,
	"LOCAL":    LocalKeyWordTP,
	"STATIC":   StaticKeyWordTP,
	"CONSTANT": ConstantKeyWordTP,
	"THIS":     ThisKeyWordTP,
	"THAT":     ThatKeyWordTP,
	"POINTER":  PointerKeyWordTP,
	"TEMP":     TempKeyWordTP,
	"ADD":      AddKeyWordTP,
	"SUB":      SubKeyWordTP,
	"NEG":      NegKeyWordTP,
	"EQ":       EqKeyWordTP,
	"GT":       GtKeyWordTP,
	"LT":       LtKeyWordTP,
	"AND":      AndKeyWordTP,
	"OR":       OrKeyWordTP,
	"NOT":      NotKeyWordTP,
	"LABEL":    LabelKeyWordTP,
	"IF-GOTO":  IfGotoKeyWordTP,
	"GOTO":     GotoKeyWordTP,
	"FUNCTION": FunctionKeyWordTP,
	"CALL":     CallKeyWordTP,
	"RETURN":   ReturnKeyWordTP,
}

var labelFormat = regexp.MustCompile(`^[a-zA-Z_.:][0-9a-zA-Z_.$:]*$`)

// Instruction is one parsed vm line. Arg holds the segment, label, function name or arithmetic
// command, Value holds the index, nLocals or nArgs.
type Instruction struct {
	Line    int
	Command Command
	Arg     string
	Value   int
}

// pointer and temp are fixed size segments.
var segmentSize = map[string]int{
	"pointer": 2,
	"temp":    8,
}

// Parser turns vm text into instructions, rejecting anything the vm translator would not accept.
type Parser struct {
	lineCounter  int
	instructions []Instruction
}

func Parse(rd io.Reader) ([]Instruction, error) {
	parser := &Parser{}
	return parser.Parse(rd)
}

func (parser *Parser) Parse(rd io.Reader) ([]Instruction, error) {
	reader := bufio.NewReader(rd)
	parser.lineCounter, parser.instructions = 0, nil
	for {
		line, err := reader.ReadBytes('\n')
		if err != nil && err != io.EOF {
			return nil, err
		}
		if len(line) > 0 {
			parser.lineCounter++
			if parseErr := parser.parseLine(line); parseErr != nil {
				return nil, parseErr
			}
		}
		if err == io.EOF {
			return parser.instructions, nil
		}
	}
}

// getNextToken returns the next space separated token of line and the rest of the line.
func (parser *Parser) getNextToken(line []byte) (string, []byte) {
	line = bytes.TrimSpace(line)
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case ' ', '\t', '\n', '\r', '\f', '\v':
			return string(line[:i]), line[i:]
		}
	}
	return string(line), nil
}

func (parser *Parser) parseLine(line []byte) (err error) {
	token, line := parser.getNextToken(line)
	if len(token) == 0 {
		return nil
	}
	if strings.HasPrefix(token, "//") {
		return nil
	}
	keyWordTP, exist := keyWordsMap[strings.ToUpper(token)]
	if !exist {
		return parser.makeError(token)
	}
	switch keyWordTP {
	case PushKeyWordTP:
		line, err = parser.parseMemoryAccess(PushCmd, line)
	case PopKeyWordTP:
		line, err = parser.parseMemoryAccess(PopCmd, line)
	case AddKeyWordTP, SubKeyWordTP, NegKeyWordTP, EqKeyWordTP, GtKeyWordTP, LtKeyWordTP, AndKeyWordTP,
		OrKeyWordTP, NotKeyWordTP:
		parser.add(ArithmeticCmd, strings.ToLower(token), 0)
	case LabelKeyWordTP:
		line, err = parser.parseLabel(LabelCmd, line)
	case GotoKeyWordTP:
		line, err = parser.parseLabel(GotoCmd, line)
	case IfGotoKeyWordTP:
		line, err = parser.parseLabel(IfGotoCmd, line)
	case FunctionKeyWordTP:
		line, err = parser.parseNamedCount(FunctionCmd, line)
	case CallKeyWordTP:
		line, err = parser.parseNamedCount(CallCmd, line)
	case ReturnKeyWordTP:
		parser.add(ReturnCmd, "", 0)
	default:
		return parser.makeError(token)
	}
	if err != nil {
		return err
	}
	return parser.parseRemainContent(line)
}

func (parser *Parser) parseMemoryAccess(cmd Command, line []byte) ([]byte, error) {
	token, line := parser.getNextToken(line)
	keyWordTP, exist := keyWordsMap[strings.ToUpper(token)]
	if !exist || keyWordTP < ArgumentKeyWordTP || keyWordTP > TempKeyWordTP {
		return nil, parser.makeError(token)
	}
	segment := strings.ToLower(token)
	if cmd == PopCmd && keyWordTP == ConstantKeyWordTP {
		return nil, parser.makeError("pop constant")
	}
	value, line, err := parser.getIntegerValue(line)
	if err != nil {
		return nil, err
	}
	if size, fixed := segmentSize[segment]; fixed && value >= size {
		return nil, parser.makeError(fmt.Sprintf("%s %d", segment, value))
	}
	if keyWordTP == ConstantKeyWordTP && value > 32767 {
		return nil, parser.makeError(fmt.Sprintf("constant %d", value))
	}
	parser.add(cmd, segment, value)
	return line, nil
}

func (parser *Parser) parseLabel(cmd Command, line []byte) ([]byte, error) {
	line, label, err := parser.parseLabelName(line)
	if err != nil {
		return nil, err
	}
	parser.add(cmd, label, 0)
	return line, nil
}

// function name nLocals | call name nArgs
func (parser *Parser) parseNamedCount(cmd Command, line []byte) ([]byte, error) {
	line, name, err := parser.parseLabelName(line)
	if err != nil {
		return nil, err
	}
	value, line, err := parser.getIntegerValue(line)
	if err != nil {
		return nil, err
	}
	parser.add(cmd, name, value)
	return line, nil
}

func (parser *Parser) parseLabelName(line []byte) ([]byte, string, error) {
	token, line := parser.getNextToken(line)
	if len(token) == 0 || !labelFormat.MatchString(token) {
		return nil, "", parser.makeError(token)
	}
	return line, token, nil
}

func (parser *Parser) getIntegerValue(line []byte) (int, []byte, error) {
	token, line := parser.getNextToken(line)
	ret, err := strconv.Atoi(token)
	if err != nil || ret < 0 {
		return -1, nil, parser.makeError(token)
	}
	return ret, line, nil
}

func (parser *Parser) parseRemainContent(line []byte) error {
	remain := bytes.TrimSpace(line)
	if len(remain) == 0 || bytes.HasPrefix(remain, []byte("//")) {
		return nil
	}
	return parser.makeError(string(remain))
}

func (parser *Parser) add(cmd Command, arg string, value int) {
	parser.instructions = append(parser.instructions, Instruction{
		Line:    parser.lineCounter,
		Command: cmd,
		Arg:     arg,
		Value:   value,
	})
}

func (parser *Parser) makeError(near string) error {
	return fmt.Errorf("SyntaxError: syntax error near %q at line %d", near, parser.lineCounter)
}
