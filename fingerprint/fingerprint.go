// Package fingerprint computes a stable, content-addressed identity
// for a compiled program, independent of the emitted Brainfuck text.
// It exists so reproducibility (identical source in, identical output
// out) can be checked by comparing a 32-byte digest rather than
// diffing potentially large Brainfuck strings.
package fingerprint

import (
	"crypto/sha256"
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/akramoo/bfc/ast"
)

// canonicalProgram is the wire shape fingerprinted in place of
// ast.Program: a flat, ordered statement list using plain structs and
// tagged union discriminators instead of Go interfaces, since CBOR
// cannot encode an interface value on its own.
type canonicalProgram struct {
	Version    uint8
	Statements []canonicalStmt
}

type canonicalStmt struct {
	Kind      string
	Name      string
	Mutable   bool
	Value     *canonicalExpr
	Condition *canonicalExpr
	Body      []canonicalStmt
}

type canonicalExpr struct {
	Kind     string
	Value    int32
	Name     string
	Operator string
	Left     *canonicalExpr
	Right    *canonicalExpr
}

func canonicalizeExpr(expr ast.Expr) (*canonicalExpr, error) {
	if expr == nil {
		return nil, nil
	}

	switch e := expr.(type) {
	case ast.NumberExpr:
		return &canonicalExpr{Kind: "number", Value: e.Value}, nil

	case ast.VariableExpr:
		return &canonicalExpr{Kind: "variable", Name: e.Name}, nil

	case ast.BinaryExpr:
		left, err := canonicalizeExpr(e.Left)
		if err != nil {
			return nil, err
		}
		right, err := canonicalizeExpr(e.Right)
		if err != nil {
			return nil, err
		}
		return &canonicalExpr{
			Kind:     "binary",
			Operator: e.Operator.String(),
			Left:     left,
			Right:    right,
		}, nil

	default:
		return nil, fmt.Errorf("fingerprint: unknown expression node %T", expr)
	}
}

func canonicalizeStmt(stmt ast.Stmt) (canonicalStmt, error) {
	switch s := stmt.(type) {
	case ast.LetStmt:
		value, err := canonicalizeExpr(s.Value)
		if err != nil {
			return canonicalStmt{}, err
		}
		return canonicalStmt{Kind: "let", Name: s.Name, Mutable: s.Mutable, Value: value}, nil

	case ast.AssignStmt:
		value, err := canonicalizeExpr(s.Value)
		if err != nil {
			return canonicalStmt{}, err
		}
		return canonicalStmt{Kind: "assign", Name: s.Name, Value: value}, nil

	case ast.PrintStmt:
		value, err := canonicalizeExpr(s.Value)
		if err != nil {
			return canonicalStmt{}, err
		}
		return canonicalStmt{Kind: "print", Value: value}, nil

	case ast.IfStmt:
		cond, err := canonicalizeExpr(s.Condition)
		if err != nil {
			return canonicalStmt{}, err
		}
		body, err := canonicalizeBody(s.Body)
		if err != nil {
			return canonicalStmt{}, err
		}
		return canonicalStmt{Kind: "if", Condition: cond, Body: body}, nil

	case ast.WhileStmt:
		cond, err := canonicalizeExpr(s.Condition)
		if err != nil {
			return canonicalStmt{}, err
		}
		body, err := canonicalizeBody(s.Body)
		if err != nil {
			return canonicalStmt{}, err
		}
		return canonicalStmt{Kind: "while", Condition: cond, Body: body}, nil

	default:
		return canonicalStmt{}, fmt.Errorf("fingerprint: unknown statement node %T", stmt)
	}
}

func canonicalizeBody(body []ast.Stmt) ([]canonicalStmt, error) {
	out := make([]canonicalStmt, 0, len(body))
	for _, stmt := range body {
		cs, err := canonicalizeStmt(stmt)
		if err != nil {
			return nil, err
		}
		out = append(out, cs)
	}
	return out, nil
}

func canonicalize(program ast.Program) (*canonicalProgram, error) {
	statements, err := canonicalizeBody(program)
	if err != nil {
		return nil, err
	}
	return &canonicalProgram{Version: 1, Statements: statements}, nil
}

// marshalBinary produces the deterministic CBOR encoding of cp. The
// type-alias trick avoids cbor recursing back into a MarshalBinary
// method were one ever added to canonicalProgram.
func (cp *canonicalProgram) marshalBinary() ([]byte, error) {
	encMode, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		return nil, fmt.Errorf("fingerprint: build CBOR encoder: %w", err)
	}

	type canonicalProgramAlias canonicalProgram
	alias := (*canonicalProgramAlias)(cp)

	data, err := encMode.Marshal(alias)
	if err != nil {
		return nil, fmt.Errorf("fingerprint: CBOR encode: %w", err)
	}
	return data, nil
}

// Of computes the SHA-256 fingerprint of program's canonical encoding.
// Two programs that are structurally identical (same statement order,
// same literals, same names) always produce the same fingerprint,
// regardless of how many times the program is compiled.
func Of(program ast.Program) ([32]byte, error) {
	cp, err := canonicalize(program)
	if err != nil {
		return [32]byte{}, err
	}

	data, err := cp.marshalBinary()
	if err != nil {
		return [32]byte{}, err
	}

	return sha256.Sum256(data), nil
}
