package vmcheck

import (
	"fmt"
)

// StackError reports the first instruction that breaks stack discipline.
type StackError struct {
	Line     int
	Function string
	Msg      string
}

func (e *StackError) Error() string {
	return fmt.Sprintf("StackError: line %d in %s: %s", e.Line, e.Function, e.Msg)
}

// Check simulates the operand stack depth of every function in instructions. Code compiled
// statement by statement must hold:
//   - the depth never drops below zero within a function;
//   - it is zero at every label, goto and after every if-goto;
//   - return finds exactly one value on the stack;
//   - labels are defined once and jumps stay inside their function.
func Check(instructions []Instruction) error {
	c := &checker{labels: map[string]string{}, functions: map[string]bool{}}
	for _, ins := range instructions {
		if err := c.step(ins); err != nil {
			return err
		}
	}
	return c.endFunction(lastLine(instructions))
}

type checker struct {
	function  string
	depth     int
	labels    map[string]string // label -> function defining it
	functions map[string]bool
	jumps     []Instruction
}

func (c *checker) step(ins Instruction) error {
	if ins.Command == FunctionCmd {
		if err := c.endFunction(ins.Line); err != nil {
			return err
		}
		if c.functions[ins.Arg] {
			return c.makeError(ins, "function %s defined twice", ins.Arg)
		}
		c.functions[ins.Arg] = true
		c.function, c.depth = ins.Arg, 0
		return nil
	}
	if c.function == "" {
		return c.makeError(ins, "instruction outside of a function")
	}
	switch ins.Command {
	case PushCmd:
		c.depth++
	case PopCmd:
		return c.pop(ins, 1)
	case ArithmeticCmd:
		if ins.Arg == "neg" || ins.Arg == "not" {
			return c.need(ins, 1)
		}
		if err := c.need(ins, 2); err != nil {
			return err
		}
		c.depth--
	case LabelCmd:
		if owner, ok := c.labels[ins.Arg]; ok {
			return c.makeError(ins, "label %s already defined in %s", ins.Arg, owner)
		}
		c.labels[ins.Arg] = c.function
		return c.balanced(ins)
	case GotoCmd:
		c.jumps = append(c.jumps, ins)
		return c.balanced(ins)
	case IfGotoCmd:
		c.jumps = append(c.jumps, ins)
		if err := c.pop(ins, 1); err != nil {
			return err
		}
		return c.balanced(ins)
	case CallCmd:
		if err := c.pop(ins, ins.Value); err != nil {
			return err
		}
		c.depth++
	case ReturnCmd:
		if c.depth != 1 {
			return c.makeError(ins, "return with stack depth %d, want 1", c.depth)
		}
		c.depth = 0
	}
	return nil
}

// endFunction closes the current function: its stack must be empty and every jump must target
// one of its own labels.
func (c *checker) endFunction(line int) error {
	if c.function == "" {
		return nil
	}
	if c.depth != 0 {
		return &StackError{Line: line, Function: c.function, Msg: fmt.Sprintf("function ends with stack depth %d", c.depth)}
	}
	for _, jump := range c.jumps {
		if c.labels[jump.Arg] != c.function {
			return c.makeError(jump, "jump to undefined label %s", jump.Arg)
		}
	}
	c.jumps = c.jumps[:0]
	return nil
}

func (c *checker) need(ins Instruction, n int) error {
	if c.depth < n {
		return c.makeError(ins, "needs %d operands, stack depth is %d", n, c.depth)
	}
	return nil
}

func (c *checker) pop(ins Instruction, n int) error {
	if err := c.need(ins, n); err != nil {
		return err
	}
	c.depth -= n
	return nil
}

func (c *checker) balanced(ins Instruction) error {
	if c.depth != 0 {
		return c.makeError(ins, "stack depth %d at control flow, want 0", c.depth)
	}
	return nil
}

func (c *checker) makeError(ins Instruction, format string, args ...interface{}) error {
	return &StackError{Line: ins.Line, Function: c.function, Msg: fmt.Sprintf(format, args...)}
}

func lastLine(instructions []Instruction) int {
	if len(instructions) == 0 {
		return 0
	}
	return instructions[len(instructions)-1].Line
}
