// Package ir records the primitive operations the code generator
// performs, as a side-channel trace separate from the emitted
// Brainfuck text. It exists for --debug rendering in the driver and
// for white-box tests that want to assert which primitive
// fired without parsing the generated Brainfuck back out.
//
// This mirrors the role math-compiler's instructions package plays:
// there, a token stream is first converted into a list of
// instructions.Instruction before any assembly text is produced, so
// that generation and "what happened" bookkeeping are separate
// concerns. Our generator produces Brainfuck text directly (there is
// no RPN-style flat instruction list to lower), so the trace is
// recorded as a side effect of generation instead of a preceding pass.
package ir

import "fmt"

// OpKind names a recorded primitive operation.
type OpKind string

const (
	OpMove         OpKind = "move"
	OpClear        OpKind = "clear"
	OpSet          OpKind = "set"
	OpCopy         OpKind = "copy"
	OpAdd          OpKind = "add"
	OpSub          OpKind = "sub"
	OpCompareEqual OpKind = "compare_equal"
	OpFlip         OpKind = "flip"
	OpEnterLoop    OpKind = "enter_loop"
	OpExitLoop     OpKind = "exit_loop"
)

// Op is one recorded primitive call.
type Op struct {
	Kind OpKind
	Args []int
}

func (o Op) String() string {
	return fmt.Sprintf("%s%v", o.Kind, o.Args)
}

// Trace accumulates Ops in emission order.
type Trace struct {
	ops []Op
}

// Record appends an Op to the trace.
func (t *Trace) Record(kind OpKind, args ...int) {
	t.ops = append(t.ops, Op{Kind: kind, Args: args})
}

// Ops returns the recorded operations in emission order.
func (t *Trace) Ops() []Op {
	return t.ops
}

// Len reports how many operations have been recorded.
func (t *Trace) Len() int {
	return len(t.ops)
}
