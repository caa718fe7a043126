package parser

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/akramoo/bfc/ast"
	"github.com/akramoo/bfc/cmplerr"
	"github.com/akramoo/bfc/lexer"
)

func parse(t *testing.T, src string) ast.Program {
	t.Helper()
	tokens, err := lexer.Tokenize(src)
	if err != nil {
		t.Fatalf("tokenize error: %v", err)
	}
	program, err := Parse(tokens)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	return program
}

func TestParseLetStatement(t *testing.T) {
	program := parse(t, "let x = 42;")

	want := ast.Program{
		ast.LetStmt{Name: "x", Mutable: false, Value: ast.NumberExpr{Value: 42}},
	}

	if diff := cmp.Diff(want, program); diff != "" {
		t.Errorf("program mismatch (-want +got):\n%s", diff)
	}
}

func TestParseLetMut(t *testing.T) {
	program := parse(t, "let mut i = 0;")

	want := ast.Program{
		ast.LetStmt{Name: "i", Mutable: true, Value: ast.NumberExpr{Value: 0}},
	}

	if diff := cmp.Diff(want, program); diff != "" {
		t.Errorf("program mismatch (-want +got):\n%s", diff)
	}
}

// TestParsePrecedence verifies 1 + 2 * 3 parses with factor binding
// tighter than term.
func TestParsePrecedence(t *testing.T) {
	program := parse(t, "let x = 1 + 2 * 3;")

	want := ast.Program{
		ast.LetStmt{
			Name: "x",
			Value: ast.BinaryExpr{
				Left:     ast.NumberExpr{Value: 1},
				Operator: ast.Add,
				Right: ast.BinaryExpr{
					Left:     ast.NumberExpr{Value: 2},
					Operator: ast.Mul,
					Right:    ast.NumberExpr{Value: 3},
				},
			},
		},
	}

	if diff := cmp.Diff(want, program); diff != "" {
		t.Errorf("program mismatch (-want +got):\n%s", diff)
	}
}

func TestParseAssignStatement(t *testing.T) {
	program := parse(t, "x = x + 1")

	want := ast.Program{
		ast.AssignStmt{
			Name: "x",
			Value: ast.BinaryExpr{
				Left:     ast.VariableExpr{Name: "x"},
				Operator: ast.Add,
				Right:    ast.NumberExpr{Value: 1},
			},
		},
	}

	if diff := cmp.Diff(want, program); diff != "" {
		t.Errorf("program mismatch (-want +got):\n%s", diff)
	}
}

func TestParsePrintStatement(t *testing.T) {
	program := parse(t, "print(65);")

	want := ast.Program{
		ast.PrintStmt{Value: ast.NumberExpr{Value: 65}},
	}

	if diff := cmp.Diff(want, program); diff != "" {
		t.Errorf("program mismatch (-want +got):\n%s", diff)
	}
}

func TestParseIfStatement(t *testing.T) {
	program := parse(t, "if x == 1 { print(x); }")

	want := ast.Program{
		ast.IfStmt{
			Condition: ast.BinaryExpr{
				Left:     ast.VariableExpr{Name: "x"},
				Operator: ast.Equal,
				Right:    ast.NumberExpr{Value: 1},
			},
			Body: []ast.Stmt{
				ast.PrintStmt{Value: ast.VariableExpr{Name: "x"}},
			},
		},
	}

	if diff := cmp.Diff(want, program); diff != "" {
		t.Errorf("program mismatch (-want +got):\n%s", diff)
	}
}

// TestParseTautologicalWhile documents that the grammar accepts
// `while i == i { ... }` even though its condition is always true, so
// the compiled program loops forever at runtime; parsing it must still
// succeed.
func TestParseTautologicalWhile(t *testing.T) {
	program := parse(t, "let mut i = 3; while i == i { i = i - 1; print(i); }")

	if len(program) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(program))
	}
	if _, ok := program[1].(ast.WhileStmt); !ok {
		t.Fatalf("expected second statement to be a WhileStmt, got %T", program[1])
	}
}

func TestParseOptionalSemicolons(t *testing.T) {
	program := parse(t, "let x = 1\nlet y = 2\n")
	if len(program) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(program))
	}
}

func TestParseErrorPosition(t *testing.T) {
	tokens, err := lexer.Tokenize("let = 1;")
	if err != nil {
		t.Fatalf("unexpected lex error: %v", err)
	}
	_, err = Parse(tokens)
	if err == nil {
		t.Fatalf("expected a parse error for a missing variable name")
	}
	cerr, ok := err.(*cmplerr.Error)
	if !ok {
		t.Fatalf("expected *cmplerr.Error, got %T", err)
	}
	// The name is missing at the '=' token, cursor index 1.
	if cerr.Position == nil || *cerr.Position != 1 {
		t.Errorf("expected the error at token index 1, got %v", cerr)
	}
}

func TestParseUnterminatedBlock(t *testing.T) {
	tokens, err := lexer.Tokenize("if x { print(x);")
	if err != nil {
		t.Fatalf("unexpected lex error: %v", err)
	}
	_, err = Parse(tokens)
	if err == nil {
		t.Fatalf("expected a parse error for an unterminated block")
	}
}
