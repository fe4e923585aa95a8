package internal

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVMWriter_Commands(t *testing.T) {
	var out bytes.Buffer
	writer := NewVMWriter(&out)
	writer.WriteFunction("Main.main", 2)
	writer.WritePush(ConstantSegment, 7)
	writer.WritePush(LocalSegment, 1)
	writer.WriteArithmetic(AddCmd)
	writer.WritePop(StaticSegment, 3)
	writer.WriteLabel("Main.main.WHILE_EXP.0")
	writer.WriteIf("Main.main.WHILE_END.1")
	writer.WriteGoto("Main.main.WHILE_EXP.0")
	writer.WriteCall("Math.multiply", 2)
	writer.WriteReturn()
	require.NoError(t, writer.Flush())

	expected := "function Main.main 2\n" +
		"push constant 7\n" +
		"push local 1\n" +
		"add\n" +
		"pop static 3\n" +
		"label Main.main.WHILE_EXP.0\n" +
		"if-goto Main.main.WHILE_END.1\n" +
		"goto Main.main.WHILE_EXP.0\n" +
		"call Math.multiply 2\n" +
		"return\n"
	assert.Equal(t, expected, out.String())
}

func TestVMWriter_NewLabel(t *testing.T) {
	writer := NewVMWriter(&bytes.Buffer{})
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		label := writer.NewLabel("Square.move", "IF_FALSE")
		assert.False(t, seen[label], label)
		seen[label] = true
	}
	assert.Equal(t, "Square.move.WHILE_EXP.50", writer.NewLabel("Square.move", "WHILE_EXP"))
	// Each writer counts on its own.
	assert.Equal(t, "Main.main.IF_END.0", NewVMWriter(&bytes.Buffer{}).NewLabel("Main.main", "IF_END"))
}

type failingWriter struct {
	err error
}

func (w *failingWriter) Write(p []byte) (int, error) {
	return 0, w.err
}

func TestVMWriter_SinkError(t *testing.T) {
	diskFull := errors.New("disk full")
	writer := NewVMWriter(&failingWriter{err: diskFull})
	writer.WritePush(ConstantSegment, 1)
	// Still buffered.
	assert.NoError(t, writer.Err())

	err := writer.Flush()
	var sinkErr *SinkError
	require.True(t, errors.As(err, &sinkErr))
	assert.True(t, errors.Is(err, diskFull))

	// The first failure sticks.
	writer.WriteReturn()
	assert.True(t, errors.Is(writer.Flush(), diskFull))
}
