// Package parser implements a recursive-descent parser over a token
// vector, producing an ast.Program. All productions are LL(1).
package parser

import (
	"fmt"
	"strconv"

	"github.com/akramoo/bfc/ast"
	"github.com/akramoo/bfc/cmplerr"
	"github.com/akramoo/bfc/token"
)

// Parser holds our object-state: the token vector and an index-based
// cursor into it.
type Parser struct {
	tokens  []token.Token
	current int
}

// New creates a Parser over an already-tokenized input.
func New(tokens []token.Token) *Parser {
	return &Parser{tokens: tokens}
}

// Parse converts a token stream produced by lexer.Tokenize into a
// Program.
func Parse(tokens []token.Token) (ast.Program, error) {
	p := New(tokens)
	return p.Parse()
}

// Parse runs the parser to completion.
func (p *Parser) Parse() (ast.Program, error) {
	var program ast.Program

	for !p.check(token.EOF) {
		stmt, err := p.statement()
		if err != nil {
			return nil, err
		}
		program = append(program, stmt)
	}

	return program, nil
}

// statement := let_stmt | assign_stmt | print_stmt | if_stmt | while_stmt
//
// Statement dispatch peeks exactly one token: an Identifier at
// statement head is always parsed as an assignment, since the grammar
// has no bare-expression statement.
func (p *Parser) statement() (ast.Stmt, error) {
	switch p.peek().Type {
	case token.LET:
		return p.letStatement()
	case token.PRINT:
		return p.printStatement()
	case token.IF:
		return p.ifStatement()
	case token.WHILE:
		return p.whileStatement()
	case token.IDENT:
		return p.assignStatement()
	default:
		return nil, p.errorf("unexpected token %q", p.peek().Type)
	}
}

// let_stmt := 'let' 'mut'? IDENT '=' expression ';'?
func (p *Parser) letStatement() (ast.Stmt, error) {
	if err := p.expect(token.LET, "expected 'let'"); err != nil {
		return nil, err
	}

	mutable := false
	if p.check(token.MUT) {
		p.advance()
		mutable = true
	}

	name, err := p.expectIdentifier("expected variable name")
	if err != nil {
		return nil, err
	}

	if err := p.expect(token.ASSIGN, "expected '=' after variable name"); err != nil {
		return nil, err
	}

	value, err := p.expression()
	if err != nil {
		return nil, err
	}
	p.consumeIfPresent(token.SEMICOLON)

	return ast.LetStmt{Name: name, Mutable: mutable, Value: value}, nil
}

// assign_stmt := IDENT '=' expression ';'?
func (p *Parser) assignStatement() (ast.Stmt, error) {
	name, err := p.expectIdentifier("expected variable name")
	if err != nil {
		return nil, err
	}

	if err := p.expect(token.ASSIGN, "expected '=' in assignment"); err != nil {
		return nil, err
	}

	value, err := p.expression()
	if err != nil {
		return nil, err
	}
	p.consumeIfPresent(token.SEMICOLON)

	return ast.AssignStmt{Name: name, Value: value}, nil
}

// print_stmt := 'print' '(' expression ')' ';'?
func (p *Parser) printStatement() (ast.Stmt, error) {
	if err := p.expect(token.PRINT, "expected 'print'"); err != nil {
		return nil, err
	}
	if err := p.expect(token.LPAREN, "expected '(' after 'print'"); err != nil {
		return nil, err
	}

	value, err := p.expression()
	if err != nil {
		return nil, err
	}

	if err := p.expect(token.RPAREN, "expected ')' after expression"); err != nil {
		return nil, err
	}
	p.consumeIfPresent(token.SEMICOLON)

	return ast.PrintStmt{Value: value}, nil
}

// if_stmt := 'if' expression block
func (p *Parser) ifStatement() (ast.Stmt, error) {
	if err := p.expect(token.IF, "expected 'if'"); err != nil {
		return nil, err
	}

	cond, err := p.expression()
	if err != nil {
		return nil, err
	}

	body, err := p.block()
	if err != nil {
		return nil, err
	}

	return ast.IfStmt{Condition: cond, Body: body}, nil
}

// while_stmt := 'while' expression block
func (p *Parser) whileStatement() (ast.Stmt, error) {
	if err := p.expect(token.WHILE, "expected 'while'"); err != nil {
		return nil, err
	}

	cond, err := p.expression()
	if err != nil {
		return nil, err
	}

	body, err := p.block()
	if err != nil {
		return nil, err
	}

	return ast.WhileStmt{Condition: cond, Body: body}, nil
}

// block := '{' statement* '}'
func (p *Parser) block() ([]ast.Stmt, error) {
	if err := p.expect(token.LBRACE, "expected '{'"); err != nil {
		return nil, err
	}

	var statements []ast.Stmt
	for !p.check(token.RBRACE) && !p.check(token.EOF) {
		stmt, err := p.statement()
		if err != nil {
			return nil, err
		}
		statements = append(statements, stmt)
	}

	if err := p.expect(token.RBRACE, "expected '}'"); err != nil {
		return nil, err
	}

	return statements, nil
}

// expression := equality
func (p *Parser) expression() (ast.Expr, error) {
	return p.equality()
}

// equality := comparison (('==' | '!=') comparison)*
func (p *Parser) equality() (ast.Expr, error) {
	expr, err := p.comparison()
	if err != nil {
		return nil, err
	}

	for p.check(token.EQ) || p.check(token.NOT_EQ) {
		op := ast.Equal
		if p.peek().Type == token.NOT_EQ {
			op = ast.NotEqual
		}
		p.advance()

		right, err := p.comparison()
		if err != nil {
			return nil, err
		}
		expr = ast.BinaryExpr{Left: expr, Operator: op, Right: right}
	}

	return expr, nil
}

// comparison := term (('<' | '>') term)*
func (p *Parser) comparison() (ast.Expr, error) {
	expr, err := p.term()
	if err != nil {
		return nil, err
	}

	for p.check(token.LT) || p.check(token.GT) {
		op := ast.Less
		if p.peek().Type == token.GT {
			op = ast.Greater
		}
		p.advance()

		right, err := p.term()
		if err != nil {
			return nil, err
		}
		expr = ast.BinaryExpr{Left: expr, Operator: op, Right: right}
	}

	return expr, nil
}

// term := factor (('+' | '-') factor)*
func (p *Parser) term() (ast.Expr, error) {
	expr, err := p.factor()
	if err != nil {
		return nil, err
	}

	for p.check(token.PLUS) || p.check(token.MINUS) {
		op := ast.Add
		if p.peek().Type == token.MINUS {
			op = ast.Sub
		}
		p.advance()

		right, err := p.factor()
		if err != nil {
			return nil, err
		}
		expr = ast.BinaryExpr{Left: expr, Operator: op, Right: right}
	}

	return expr, nil
}

// factor := primary (('*' | '/') primary)*
func (p *Parser) factor() (ast.Expr, error) {
	expr, err := p.primary()
	if err != nil {
		return nil, err
	}

	for p.check(token.ASTERISK) || p.check(token.SLASH) {
		op := ast.Mul
		if p.peek().Type == token.SLASH {
			op = ast.Div
		}
		p.advance()

		right, err := p.primary()
		if err != nil {
			return nil, err
		}
		expr = ast.BinaryExpr{Left: expr, Operator: op, Right: right}
	}

	return expr, nil
}

// primary := NUMBER | IDENT | '(' expression ')'
func (p *Parser) primary() (ast.Expr, error) {
	tok := p.peek()

	switch tok.Type {
	case token.NUMBER:
		p.advance()
		n, err := parseInt32(tok.Literal)
		if err != nil {
			return nil, p.errorfAt(p.current-1, "invalid number literal: %s", tok.Literal)
		}
		return ast.NumberExpr{Value: n}, nil

	case token.IDENT:
		p.advance()
		return ast.VariableExpr{Name: tok.Literal}, nil

	case token.LPAREN:
		p.advance()
		expr, err := p.expression()
		if err != nil {
			return nil, err
		}
		if err := p.expect(token.RPAREN, "expected ')' after expression"); err != nil {
			return nil, err
		}
		return expr, nil

	default:
		return nil, p.errorf("unexpected token in expression: %q", tok.Type)
	}
}

// Helper methods.

func (p *Parser) peek() token.Token {
	if p.current >= len(p.tokens) {
		return token.Token{Type: token.EOF}
	}
	return p.tokens[p.current]
}

func (p *Parser) check(t token.Type) bool {
	return p.peek().Type == t
}

func (p *Parser) advance() token.Token {
	tok := p.peek()
	if !p.isAtEnd() {
		p.current++
	}
	return tok
}

func (p *Parser) isAtEnd() bool {
	return p.current >= len(p.tokens) || p.tokens[p.current].Type == token.EOF
}

func (p *Parser) expect(t token.Type, message string) error {
	if p.check(t) {
		p.advance()
		return nil
	}
	return p.errorf("%s, got %q", message, p.peek().Type)
}

func (p *Parser) consumeIfPresent(t token.Type) bool {
	if p.check(t) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) expectIdentifier(message string) (string, error) {
	tok := p.peek()
	if tok.Type != token.IDENT {
		return "", p.errorf("%s", message)
	}
	p.advance()
	return tok.Literal, nil
}

func (p *Parser) errorf(format string, args ...interface{}) error {
	return cmplerr.NewParseError(fmt.Sprintf(format, args...), p.current)
}

func (p *Parser) errorfAt(pos int, format string, args ...interface{}) error {
	return cmplerr.NewParseError(fmt.Sprintf(format, args...), pos)
}

func parseInt32(lit string) (int32, error) {
	n, err := strconv.ParseInt(lit, 10, 32)
	if err != nil {
		return 0, err
	}
	return int32(n), nil
}
