package internal

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// xmlEscaper escapes only what the jack analyzer format escapes, apostrophes and tabs are
// written as they are.
var xmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", "\"", "&quot;")

// WriteTokensXML writes tokens in the jack analyzer token format:
//
//	<tokens>
//	<keyword> class </keyword>
//	<identifier> Main </identifier>
//	...
//	</tokens>
func WriteTokensXML(w io.Writer, tokens []*Token) error {
	out := bufio.NewWriter(w)
	out.WriteString("<tokens>\n")
	for _, token := range tokens {
		fmt.Fprintf(out, "<%s> %s </%s>\n", token.Kind, xmlEscaper.Replace(token.Lexeme), token.Kind)
	}
	out.WriteString("</tokens>\n")
	return out.Flush()
}
