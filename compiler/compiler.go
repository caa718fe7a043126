// Package compiler ties the lexer, parser, and code generator into the
// three-step pipeline the driver calls.
//
// In brief we go through a three-step process:
//
//  1. Use the lexer to tokenize the source.
//
//  2. Convert the token stream into an AST.
//
//  3. Walk the AST, generating Brainfuck for each statement.
package compiler

import (
	"github.com/akramoo/bfc/ast"
	"github.com/akramoo/bfc/codegen"
	"github.com/akramoo/bfc/config"
	"github.com/akramoo/bfc/ir"
	"github.com/akramoo/bfc/lexer"
	"github.com/akramoo/bfc/parser"
	"github.com/akramoo/bfc/token"
)

// Compiler holds our object-state.
type Compiler struct {
	// source holds the program text we're compiling.
	source string

	// cfg holds the tunables; generate passes its TempBase to the code
	// generator.
	cfg *config.Config

	// tokens holds the source, broken down into a series of tokens.
	tokens []token.Token

	// program holds the AST produced from tokens.
	program ast.Program

	// gen is the generator used for the most recent Compile call, kept
	// around so callers can retrieve its --debug trace afterward.
	gen *codegen.Generator
}

// New creates a new compiler, given the program text.
func New(input string) *Compiler {
	return &Compiler{source: input, cfg: config.Default()}
}

// SetConfig overrides the default tunables used during generation.
func (c *Compiler) SetConfig(cfg *config.Config) {
	c.cfg = cfg
}

// Compile converts the input program into Brainfuck.
func (c *Compiler) Compile() (string, error) {
	if err := c.Tokenize(); err != nil {
		return "", err
	}

	if err := c.parse(); err != nil {
		return "", err
	}

	return c.generate()
}

// Program returns the AST produced by the most recent successful
// Compile call, for fingerprinting.
func (c *Compiler) Program() ast.Program {
	return c.program
}

// Trace returns the primitive-operation trace recorded during the
// most recent Compile call, for --debug rendering.
func (c *Compiler) Trace() []ir.Op {
	if c.gen == nil {
		return nil
	}
	return c.gen.Trace()
}

// Tokenize populates our internal list of tokens, as a result of
// lexing the source string.
func (c *Compiler) Tokenize() error {
	tokens, err := lexer.Tokenize(c.source)
	if err != nil {
		return err
	}
	c.tokens = tokens
	return nil
}

// parse converts the token stream into an AST.
func (c *Compiler) parse() error {
	program, err := parser.Parse(c.tokens)
	if err != nil {
		return err
	}
	c.program = program
	return nil
}

// generate walks the AST, producing Brainfuck text.
func (c *Compiler) generate() (string, error) {
	c.gen = codegen.NewWithOptions(codegen.Options{TempBase: c.cfg.TempBase})
	return c.gen.Generate(c.program)
}
