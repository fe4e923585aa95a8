package internal

import (
	"bufio"
	"io"
	"strconv"
	"unicode/utf8"

	"jackvm/util"
)

// MaxIntConst is the largest integer constant the VM can push.
const MaxIntConst = 32767

// Tokenizer splits jack source into tokens line by line. Comments are dropped here, a block
// comment may span any number of lines.
type Tokenizer struct {
	currentPos  int
	currentLine int
	tokens      []*Token

	inBlockComment             bool
	commentLine, commentColumn int
}

// Tokenize reads all of rd and returns its tokens in source order. The first character that
// does not start a valid token aborts tokenizing with a *LexError.
func (tokenizer *Tokenizer) Tokenize(rd io.Reader) ([]*Token, error) {
	tokenizer.Reset()
	bfReader := bufio.NewReader(rd)
	for {
		line, readErr := bfReader.ReadBytes('\n')
		if readErr != nil && readErr != io.EOF {
			return nil, readErr
		}
		if len(line) > 0 {
			tokenizer.currentLine++
			tokenizer.currentPos = 0
			if err := tokenizer.parseLine(line); err != nil {
				return nil, err
			}
		}
		if readErr == io.EOF {
			break
		}
	}
	if tokenizer.inBlockComment {
		return nil, &LexError{Line: tokenizer.commentLine, Column: tokenizer.commentColumn, Near: "/*",
			Msg: "unterminated comment"}
	}
	return tokenizer.tokens, nil
}

func (tokenizer *Tokenizer) parseLine(line []byte) error {
	for {
		if tokenizer.inBlockComment && !tokenizer.skipBlockComment(line) {
			return nil
		}
		tokenizer.trimSpace(line)
		if !tokenizer.hasRemainCharacters(line) {
			return nil
		}
		if tokenizer.startsWith(line, "//") {
			return nil
		}
		if tokenizer.startsWith(line, "/*") {
			tokenizer.inBlockComment = true
			tokenizer.commentLine, tokenizer.commentColumn = tokenizer.currentLine, tokenizer.currentPos+1
			tokenizer.currentPos += 2
			continue
		}
		token, err := tokenizer.getNextToken(line)
		if err != nil {
			return err
		}
		tokenizer.tokens = append(tokenizer.tokens, token)
	}
}

// skipBlockComment moves past the closing */ of the open comment. It returns false when the
// comment does not close on this line.
func (tokenizer *Tokenizer) skipBlockComment(line []byte) bool {
	for tokenizer.currentPos < len(line) {
		if tokenizer.startsWith(line, "*/") {
			tokenizer.currentPos += 2
			tokenizer.inBlockComment = false
			return true
		}
		tokenizer.currentPos++
	}
	return false
}

// getNextToken returns the token starting at the current position, which must not be a space.
func (tokenizer *Tokenizer) getNextToken(line []byte) (*Token, error) {
	b := line[tokenizer.currentPos]
	switch {
	case isSymbol(b):
		return tokenizer.tokenSimpleSymbol(line), nil
	case b == '"':
		return tokenizer.tokenString(line)
	case util.IsNumber(b):
		return tokenizer.tokenNumber(line)
	case util.IsIdentifierStart(b):
		return tokenizer.toKeywordOrIdentifier(line), nil
	default:
		return nil, tokenizer.makeError(string(b), tokenizer.currentPos, "unrecognized character")
	}
}

func (tokenizer *Tokenizer) trimSpace(line []byte) {
	for tokenizer.currentPos < len(line) && util.IsSpace(line[tokenizer.currentPos]) {
		tokenizer.currentPos++
	}
}

func (tokenizer *Tokenizer) hasRemainCharacters(line []byte) bool {
	return tokenizer.currentPos < len(line)
}

func (tokenizer *Tokenizer) startsWith(line []byte, prefix string) bool {
	rest := line[tokenizer.currentPos:]
	return len(rest) >= len(prefix) && string(rest[:len(prefix)]) == prefix
}

func (tokenizer *Tokenizer) newToken(lexeme string, kind TokenKind, startPos int) *Token {
	return &Token{Lexeme: lexeme, Kind: kind, Line: tokenizer.currentLine, Column: startPos + 1}
}

func (tokenizer *Tokenizer) tokenSimpleSymbol(line []byte) *Token {
	token := tokenizer.newToken(string(line[tokenizer.currentPos]), SymbolKind, tokenizer.currentPos)
	tokenizer.currentPos++
	return token
}

// tokenString reads a string constant. The quotes are not part of the lexeme.
func (tokenizer *Tokenizer) tokenString(line []byte) (*Token, error) {
	startPos := tokenizer.currentPos
	tokenizer.currentPos++
	for tokenizer.currentPos < len(line) {
		b := line[tokenizer.currentPos]
		switch {
		case b == '"':
			tokenizer.currentPos++
			return tokenizer.newToken(string(line[startPos+1:tokenizer.currentPos-1]), StringConstKind, startPos), nil
		case b == '\n', b == '\r':
			return nil, tokenizer.makeError(string(line[startPos:tokenizer.currentPos]), startPos, "unterminated string")
		case b > 127:
			// String.appendChar takes one character code per call, a multi-byte character has none.
			_, size := utf8.DecodeRune(line[tokenizer.currentPos:])
			return nil, tokenizer.makeError(string(line[startPos:tokenizer.currentPos+size]), tokenizer.currentPos,
				"non-ascii character in string constant")
		case b < ' ' && b != '\t':
			return nil, tokenizer.makeError(string(line[startPos:tokenizer.currentPos+1]), tokenizer.currentPos,
				"control character in string constant")
		}
		tokenizer.currentPos++
	}
	return nil, tokenizer.makeError(string(line[startPos:]), startPos, "unterminated string")
}

func (tokenizer *Tokenizer) tokenNumber(line []byte) (*Token, error) {
	startPos := tokenizer.currentPos
	for tokenizer.currentPos < len(line) && util.IsNumber(line[tokenizer.currentPos]) {
		tokenizer.currentPos++
	}
	// 12abc is neither a number nor an identifier.
	if tokenizer.currentPos < len(line) && util.IsIdentifierPart(line[tokenizer.currentPos]) {
		end := tokenizer.currentPos
		for end < len(line) && util.IsIdentifierPart(line[end]) {
			end++
		}
		return nil, tokenizer.makeError(string(line[startPos:end]), startPos, "incorrect identifier format")
	}
	lexeme := string(line[startPos:tokenizer.currentPos])
	value, err := strconv.Atoi(lexeme)
	if err != nil || value > MaxIntConst {
		return nil, tokenizer.makeError(lexeme, startPos, "integer constant out of range 0..32767")
	}
	return tokenizer.newToken(lexeme, IntConstKind, startPos), nil
}

func (tokenizer *Tokenizer) toKeywordOrIdentifier(line []byte) *Token {
	startPos := tokenizer.currentPos
	for tokenizer.currentPos < len(line) && util.IsIdentifierPart(line[tokenizer.currentPos]) {
		tokenizer.currentPos++
	}
	lexeme := string(line[startPos:tokenizer.currentPos])
	if _, isKeyWord := keyWordMap[lexeme]; isKeyWord {
		return tokenizer.newToken(lexeme, KeywordKind, startPos)
	}
	return tokenizer.newToken(lexeme, IdentifierKind, startPos)
}

func (tokenizer *Tokenizer) makeError(near string, pos int, msg string) error {
	return &LexError{Line: tokenizer.currentLine, Column: pos + 1, Near: near, Msg: msg}
}

func (tokenizer *Tokenizer) Reset() {
	tokenizer.currentPos, tokenizer.currentLine = 0, 0
	tokenizer.tokens = nil
	tokenizer.inBlockComment = false
	tokenizer.commentLine, tokenizer.commentColumn = 0, 0
}
