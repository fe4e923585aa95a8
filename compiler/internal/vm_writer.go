package internal

import (
	"bufio"
	"fmt"
	"io"
)

type Segment string

const (
	ConstantSegment Segment = "constant"
	LocalSegment    Segment = "local"
	ArgumentSegment Segment = "argument"
	ThisSegment     Segment = "this"
	ThatSegment     Segment = "that"
	PointerSegment  Segment = "pointer"
	TempSegment     Segment = "temp"
	StaticSegment   Segment = "static"
)

type Command string

const (
	AddCmd Command = "add"
	SubCmd Command = "sub"
	NegCmd Command = "neg"
	EqCmd  Command = "eq"
	GtCmd  Command = "gt"
	LtCmd  Command = "lt"
	AndCmd Command = "and"
	OrCmd  Command = "or"
	NotCmd Command = "not"
)

// VMWriter appends vm instructions, one per line, to an output. Segment names and indexes are
// written as given.
//
// Writes after the first failed one are dropped; Flush reports that failure.
type VMWriter struct {
	out        *bufio.Writer
	err        error
	labelCount int
}

func NewVMWriter(w io.Writer) *VMWriter {
	return &VMWriter{out: bufio.NewWriter(w)}
}

func (w *VMWriter) WritePush(seg Segment, index int) {
	w.writeLine(fmt.Sprintf("push %s %d", seg, index))
}

func (w *VMWriter) WritePop(seg Segment, index int) {
	w.writeLine(fmt.Sprintf("pop %s %d", seg, index))
}

func (w *VMWriter) WriteArithmetic(cmd Command) {
	w.writeLine(string(cmd))
}

func (w *VMWriter) WriteLabel(label string) {
	w.writeLine("label " + label)
}

func (w *VMWriter) WriteGoto(label string) {
	w.writeLine("goto " + label)
}

func (w *VMWriter) WriteIf(label string) {
	w.writeLine("if-goto " + label)
}

func (w *VMWriter) WriteFunction(name string, nLocals int) {
	w.writeLine(fmt.Sprintf("function %s %d", name, nLocals))
}

func (w *VMWriter) WriteCall(name string, nArgs int) {
	w.writeLine(fmt.Sprintf("call %s %d", name, nArgs))
}

func (w *VMWriter) WriteReturn() {
	w.writeLine("return")
}

// NewLabel returns a label that no earlier call on w has returned. scope is normally the
// qualified name of the enclosing subroutine, which keeps labels unique across units too.
func (w *VMWriter) NewLabel(scope, construct string) string {
	label := fmt.Sprintf("%s.%s.%d", scope, construct, w.labelCount)
	w.labelCount++
	return label
}

// Err returns the first write error, if any.
func (w *VMWriter) Err() error {
	if w.err == nil {
		return nil
	}
	return &SinkError{Err: w.err}
}

// Flush pushes every buffered instruction to the underlying output.
func (w *VMWriter) Flush() error {
	if w.err == nil {
		w.err = w.out.Flush()
	}
	return w.Err()
}

func (w *VMWriter) writeLine(line string) {
	if w.err != nil {
		return
	}
	if _, err := w.out.WriteString(line); err != nil {
		w.err = err
		return
	}
	w.err = w.out.WriteByte('\n')
}
