package internal

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteTokensXML(t *testing.T) {
	tokenizer := &Tokenizer{}
	tokens, err := tokenizer.Tokenize(strings.NewReader(`if (x < 1) { do Output.printString("a&b"); }`))
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, WriteTokensXML(&out, tokens))
	expected := "<tokens>\n" +
		"<keyword> if </keyword>\n" +
		"<symbol> ( </symbol>\n" +
		"<identifier> x </identifier>\n" +
		"<symbol> &lt; </symbol>\n" +
		"<integerConstant> 1 </integerConstant>\n" +
		"<symbol> ) </symbol>\n" +
		"<symbol> { </symbol>\n" +
		"<keyword> do </keyword>\n" +
		"<identifier> Output </identifier>\n" +
		"<symbol> . </symbol>\n" +
		"<identifier> printString </identifier>\n" +
		"<symbol> ( </symbol>\n" +
		"<stringConstant> a&amp;b </stringConstant>\n" +
		"<symbol> ) </symbol>\n" +
		"<symbol> ; </symbol>\n" +
		"<symbol> } </symbol>\n" +
		"</tokens>\n"
	assert.Equal(t, expected, out.String())
}

func TestWriteTokensXML_Escaping(t *testing.T) {
	tokens := []*Token{
		{Lexeme: "Don't", Kind: StringConstKind},
		{Lexeme: "a\tb", Kind: StringConstKind},
		{Lexeme: `say "x" > y`, Kind: StringConstKind},
		{Lexeme: ">", Kind: SymbolKind},
	}
	var out bytes.Buffer
	require.NoError(t, WriteTokensXML(&out, tokens))
	expected := "<tokens>\n" +
		"<stringConstant> Don't </stringConstant>\n" +
		"<stringConstant> a\tb </stringConstant>\n" +
		"<stringConstant> say &quot;x&quot; &gt; y </stringConstant>\n" +
		"<symbol> &gt; </symbol>\n" +
		"</tokens>\n"
	assert.Equal(t, expected, out.String())
}

func TestWriteTokensXML_SinkError(t *testing.T) {
	err := WriteTokensXML(&failingWriter{err: errors.New("disk full")}, []*Token{{Lexeme: "x", Kind: IdentifierKind}})
	assert.Error(t, err)
}

func TestWriteTokensXML_Empty(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, WriteTokensXML(&out, nil))
	assert.Equal(t, "<tokens>\n</tokens>\n", out.String())
}
