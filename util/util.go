package util

import (
	"path/filepath"
	"strings"
)

const (
	JackExt = ".jack"
	VMExt   = ".vm"
)

func IsNumber(b byte) bool {
	return b >= '0' && b <= '9'
}

func IsUnderScore(b byte) bool {
	return b == '_'
}

func IsLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

// IsIdentifierStart reports whether b may begin a Jack identifier.
func IsIdentifierStart(b byte) bool {
	return IsLetter(b) || IsUnderScore(b)
}

func IsIdentifierPart(b byte) bool {
	return IsLetter(b) || IsUnderScore(b) || IsNumber(b)
}

func IsSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\f', '\v':
		return true
	}
	return false
}

func IsJackFile(fileName string) bool {
	return len(fileName) > len(JackExt) && strings.HasSuffix(fileName, JackExt)
}

// Stem returns the file name of path without directory and extension.
func Stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
