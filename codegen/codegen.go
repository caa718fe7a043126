// Package codegen lowers an ast.Program into a Brainfuck instruction
// stream. It is the hard part of the compiler: it maintains a
// compile-time model of the Brainfuck tape (named-cell addresses, a
// disjoint temp-cell region, and a symbolic head position) and
// synthesizes every composite primitive (copy, add, subtract,
// compare-equal, conditional, loop) out of the eight raw Brainfuck
// instructions.
package codegen

import (
	"math"
	"strings"

	"github.com/akramoo/bfc/ast"
	"github.com/akramoo/bfc/cmplerr"
	"github.com/akramoo/bfc/ir"
)

// DefaultTempBase is the address at which the temp-cell bump allocator
// starts. It must sit far enough past the named-variable region that
// no reasonable program can make the two regions collide; the
// generator does not itself bound the number of named variables, so a
// sufficiently large program remains able to collide with it.
const DefaultTempBase = 100

// Options configures a Generator.
type Options struct {
	// TempBase is the first address handed out by the temp-cell bump
	// allocator. Defaults to DefaultTempBase when zero.
	TempBase int
}

// Generator walks a Program in source order and emits Brainfuck,
// maintaining the symbolic tape state described in the package doc.
type Generator struct {
	variables map[string]int
	memoryPtr int // bump allocator for named-variable cells, starts at 0
	nextTemp  int // bump allocator for temp cells, starts at tempBase
	head      int // the model's belief about the runtime head position
	output    strings.Builder
	trace     ir.Trace
}

// New creates a Generator with the default temp-cell base address.
func New() *Generator {
	return NewWithOptions(Options{})
}

// NewWithOptions creates a Generator with the given configuration.
func NewWithOptions(opts Options) *Generator {
	tempBase := opts.TempBase
	if tempBase == 0 {
		tempBase = DefaultTempBase
	}
	return &Generator{
		variables: make(map[string]int),
		nextTemp:  tempBase,
	}
}

// Generate lowers program into a Brainfuck string using default
// options.
func Generate(program ast.Program) (string, error) {
	return NewWithOptions(Options{}).Generate(program)
}

// Generate lowers program using this Generator's configuration and
// returns the emitted Brainfuck text.
func (g *Generator) Generate(program ast.Program) (string, error) {
	for _, stmt := range program {
		if err := g.visitStmt(stmt); err != nil {
			return "", err
		}
	}
	return g.output.String(), nil
}

// Trace returns every primitive operation this Generator has recorded,
// in emission order, for --debug rendering and white-box tests. The
// trace is not reset between Generate calls on the same Generator.
func (g *Generator) Trace() []ir.Op {
	return g.trace.Ops()
}

// allocateVariable claims the next named-cell address for name,
// shadowing any previous binding. The old address (if any) becomes
// unreachable by name but is not reclaimed; the allocator leaks by
// design.
func (g *Generator) allocateVariable(name string) int {
	addr := g.memoryPtr
	g.variables[name] = addr
	g.memoryPtr++
	return addr
}

// getTempAddr claims the next temp-cell address. Temp cells are never
// freed; total usage is bounded by a linear function of AST size
// since compilation is a single pass.
func (g *Generator) getTempAddr() int {
	addr := g.nextTemp
	g.nextTemp++
	return addr
}

// moveTo emits the run of '>' or '<' needed to bring the model head to
// target, and updates the model accordingly. This is the only method
// permitted to change g.head or emit '>'/'<'.
func (g *Generator) moveTo(target int) {
	switch {
	case target > g.head:
		g.output.WriteString(strings.Repeat(">", target-g.head))
	case target < g.head:
		g.output.WriteString(strings.Repeat("<", g.head-target))
	}
	g.head = target
	g.trace.Record(ir.OpMove, target)
}

// clearCell zeroes the cell at the current head.
func (g *Generator) clearCell() {
	g.output.WriteString("[-]")
	g.trace.Record(ir.OpClear, g.head)
}

// setValue moves to addr, clears it, and materializes value there.
// Values >= 10 are built via a square-root decomposition
// (value = q*q + r) to avoid emitting O(value) '+' characters; this
// uses addr+1 as scratch, which is safe only when addr+1 is not a
// live cell. In practice setValue is only ever called on a
// freshly-allocated temp, whose successor has not yet been issued.
func (g *Generator) setValue(addr int, value int32) {
	g.moveTo(addr)
	g.clearCell()

	switch {
	case value == 0:
		// nothing further to emit

	case value > 0 && value < 10:
		g.output.WriteString(strings.Repeat("+", int(value)))

	case value >= 10:
		q := int32(math.Sqrt(float64(value)))
		r := value - q*q

		g.output.WriteString(strings.Repeat("+", int(q)))
		g.output.WriteString("[")
		g.moveTo(addr + 1)
		g.output.WriteString(strings.Repeat("+", int(q)))
		g.moveTo(addr)
		g.output.WriteString("-]")

		g.moveTo(addr + 1)
		g.output.WriteString("[-")
		g.moveTo(addr)
		g.output.WriteString("+")
		g.moveTo(addr + 1)
		g.output.WriteString("]")

		g.moveTo(addr)
		if r > 0 {
			g.output.WriteString(strings.Repeat("+", int(r)))
		}

	case value < 0:
		g.output.WriteString(strings.Repeat("-", int(-value)))
	}

	g.trace.Record(ir.OpSet, addr, int(value))
}

// copyValue nondestructively copies src into dst: src is restored from
// a temp cell after the drain, so src is unchanged and dst == src.
func (g *Generator) copyValue(src, dst int) {
	temp := g.getTempAddr()

	g.moveTo(dst)
	g.clearCell()
	g.moveTo(temp)
	g.clearCell()

	g.moveTo(src)
	g.output.WriteString("[-")
	g.moveTo(dst)
	g.output.WriteString("+")
	g.moveTo(temp)
	g.output.WriteString("+")
	g.moveTo(src)
	g.output.WriteString("]")

	g.moveTo(temp)
	g.output.WriteString("[-")
	g.moveTo(src)
	g.output.WriteString("+")
	g.moveTo(temp)
	g.output.WriteString("]")

	g.trace.Record(ir.OpCopy, src, dst)
}

// addValues sets result = left + right, leaving left and right
// unchanged.
func (g *Generator) addValues(result, left, right int) {
	g.copyValue(left, result)

	temp := g.getTempAddr()
	g.copyValue(right, temp)

	g.moveTo(temp)
	g.output.WriteString("[-")
	g.moveTo(result)
	g.output.WriteString("+")
	g.moveTo(temp)
	g.output.WriteString("]")

	g.trace.Record(ir.OpAdd, result, left, right)
}

// subValues sets result = left - right (wrapping modulo the target
// machine's cell width), leaving left and right unchanged.
func (g *Generator) subValues(result, left, right int) {
	g.copyValue(left, result)

	temp := g.getTempAddr()
	g.copyValue(right, temp)

	g.moveTo(temp)
	g.output.WriteString("[-")
	g.moveTo(result)
	g.output.WriteString("-")
	g.moveTo(temp)
	g.output.WriteString("]")

	g.trace.Record(ir.OpSub, result, left, right)
}

// compareEqual sets result = 1 if left == right else 0, leaving left
// and right unchanged.
func (g *Generator) compareEqual(result, left, right int) {
	t1 := g.getTempAddr()
	t2 := g.getTempAddr()

	g.copyValue(left, t1)
	g.copyValue(right, t2)

	g.moveTo(result)
	g.clearCell()
	g.output.WriteString("+")

	g.moveTo(t2)
	g.output.WriteString("[-")
	g.moveTo(t1)
	g.output.WriteString("-")
	g.moveTo(t2)
	g.output.WriteString("]")

	g.moveTo(t1)
	g.output.WriteString("[")
	g.moveTo(result)
	g.output.WriteString("-")
	g.moveTo(t1)
	g.output.WriteString("[-]]")

	g.trace.Record(ir.OpCompareEqual, result, left, right)
}

// flip sets addr = 1 - addr for addr in {0, 1}, used to lower !=
// from ==.
func (g *Generator) flip(addr int) {
	temp := g.getTempAddr()

	g.moveTo(temp)
	g.output.WriteString("+")

	g.moveTo(addr)
	g.output.WriteString("[-")
	g.moveTo(temp)
	g.output.WriteString("-")
	g.moveTo(addr)
	g.output.WriteString("]")

	g.moveTo(temp)
	g.output.WriteString("[-")
	g.moveTo(addr)
	g.output.WriteString("+")
	g.moveTo(temp)
	g.output.WriteString("]")

	g.trace.Record(ir.OpFlip, addr)
}

// evaluateExpression lowers expr and returns the address of a cell
// holding its value.
func (g *Generator) evaluateExpression(expr ast.Expr) (int, error) {
	switch e := expr.(type) {
	case ast.NumberExpr:
		addr := g.getTempAddr()
		g.setValue(addr, e.Value)
		return addr, nil

	case ast.VariableExpr:
		if addr, ok := g.variables[e.Name]; ok {
			return addr, nil
		}
		// Undefined variable reads degrade silently to zero rather than
		// raising an error.
		addr := g.getTempAddr()
		g.setValue(addr, 0)
		return addr, nil

	case ast.BinaryExpr:
		leftAddr, err := g.evaluateExpression(e.Left)
		if err != nil {
			return 0, err
		}
		rightAddr, err := g.evaluateExpression(e.Right)
		if err != nil {
			return 0, err
		}
		resultAddr := g.getTempAddr()

		switch e.Operator {
		case ast.Add:
			g.addValues(resultAddr, leftAddr, rightAddr)
		case ast.Sub:
			g.subValues(resultAddr, leftAddr, rightAddr)
		case ast.Equal:
			g.compareEqual(resultAddr, leftAddr, rightAddr)
		case ast.NotEqual:
			g.compareEqual(resultAddr, leftAddr, rightAddr)
			g.flip(resultAddr)
		case ast.Less, ast.Greater:
			// Simplified: copies the left operand's truthiness rather
			// than computing a real ordering.
			g.copyValue(leftAddr, resultAddr)
		case ast.Mul, ast.Div:
			return 0, cmplerr.NewCodegenError("unsupported operator: " + e.Operator.String())
		}

		return resultAddr, nil

	default:
		return 0, cmplerr.NewCodegenError("unknown expression node")
	}
}

// evaluateCondition is equivalent to evaluateExpression, with a
// micro-optimization for '==' (direct compareEqual without going
// through the generic Binary dispatch) and the same left-side-only
// simplification for '>'. Every other expression form (including a
// bare '<' comparison) is forwarded to evaluateExpression.
func (g *Generator) evaluateCondition(cond ast.Expr) (int, error) {
	if be, ok := cond.(ast.BinaryExpr); ok {
		switch be.Operator {
		case ast.Equal:
			leftAddr, err := g.evaluateExpression(be.Left)
			if err != nil {
				return 0, err
			}
			rightAddr, err := g.evaluateExpression(be.Right)
			if err != nil {
				return 0, err
			}
			resultAddr := g.getTempAddr()
			g.compareEqual(resultAddr, leftAddr, rightAddr)
			return resultAddr, nil

		case ast.Greater:
			return g.evaluateExpression(be.Left)
		}
	}

	return g.evaluateExpression(cond)
}

func (g *Generator) visitStmt(stmt ast.Stmt) error {
	switch s := stmt.(type) {
	case ast.LetStmt:
		addr := g.allocateVariable(s.Name)
		valueAddr, err := g.evaluateExpression(s.Value)
		if err != nil {
			return err
		}
		g.copyValue(valueAddr, addr)
		return nil

	case ast.AssignStmt:
		addr, ok := g.variables[s.Name]
		if !ok {
			// Assigning to an unbound name emits nothing rather than
			// raising an error.
			return nil
		}
		valueAddr, err := g.evaluateExpression(s.Value)
		if err != nil {
			return err
		}
		g.copyValue(valueAddr, addr)
		return nil

	case ast.PrintStmt:
		addr, err := g.evaluateExpression(s.Value)
		if err != nil {
			return err
		}
		g.moveTo(addr)
		g.output.WriteString(".")
		return nil

	case ast.IfStmt:
		condAddr, err := g.evaluateCondition(s.Condition)
		if err != nil {
			return err
		}
		g.moveTo(condAddr)
		g.output.WriteString("[")
		g.trace.Record(ir.OpEnterLoop, condAddr)

		for _, bodyStmt := range s.Body {
			if err := g.visitStmt(bodyStmt); err != nil {
				return err
			}
		}

		g.moveTo(condAddr)
		g.clearCell()
		g.output.WriteString("]")
		g.trace.Record(ir.OpExitLoop, condAddr)
		return nil

	case ast.WhileStmt:
		condAddr, err := g.evaluateCondition(s.Condition)
		if err != nil {
			return err
		}
		g.moveTo(condAddr)
		g.output.WriteString("[")
		g.trace.Record(ir.OpEnterLoop, condAddr)

		for _, bodyStmt := range s.Body {
			if err := g.visitStmt(bodyStmt); err != nil {
				return err
			}
		}

		newCondAddr, err := g.evaluateCondition(s.Condition)
		if err != nil {
			return err
		}
		g.copyValue(newCondAddr, condAddr)
		g.moveTo(condAddr)
		g.output.WriteString("]")
		g.trace.Record(ir.OpExitLoop, condAddr)
		return nil

	default:
		return cmplerr.NewCodegenError("unknown statement node")
	}
}
