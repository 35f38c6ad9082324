// Package parser implements a recursive-descent parser over the token
// stream produced by internal/lexer, building the tagged-union AST defined
// in internal/ast (spec.md §4.2). Lookahead is one token, fetched lazily so
// that statement boundaries that flip the lexer into a special mode (the
// DATALINES raw-line mode) are never disturbed by an eager prefetch.
package parser

import (
	"fmt"

	"github.com/sasds/sasds/internal/ast"
	"github.com/sasds/sasds/internal/lexer"
)

// Status is the result of a single top-level ParseStatement call, used by
// the REPL front-end to decide whether to keep accumulating input
// (spec.md §4.2 "partial input").
type Status int

const (
	StatusOK Status = iota
	StatusIncomplete
	StatusError
)

// Precedence levels for the expression grammar (spec.md §4.2).
const (
	_ int = iota
	LOWEST
	OR_PREC
	AND_PREC
	COMPARE
	SUM
	PRODUCT
	POWER_PREC
)

var precedences = map[lexer.TokenType]int{
	lexer.OR:     OR_PREC,
	lexer.AND:    AND_PREC,
	lexer.ASSIGN: COMPARE,
	lexer.EQ:     COMPARE,
	lexer.NOT_EQ: COMPARE,
	lexer.LT:     COMPARE,
	lexer.LT_EQ:  COMPARE,
	lexer.GT:     COMPARE,
	lexer.GT_EQ:  COMPARE,
	lexer.PLUS:   SUM,
	lexer.MINUS:  SUM,
	lexer.STAR:   PRODUCT,
	lexer.SLASH:  PRODUCT,
	lexer.POWER:  POWER_PREC,
}

// Parser is a recursive-descent parser with one token of lookahead.
type Parser struct {
	l   *lexer.Lexer
	cur lexer.Token

	hasPeek bool
	peek    lexer.Token

	errors []string
	eof    bool
}

// New creates a Parser reading from l.
func New(l *lexer.Lexer) *Parser {
	p := &Parser{l: l}
	p.cur = p.l.NextToken()
	return p
}

func (p *Parser) Errors() []string { return p.errors }

func (p *Parser) errorf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	p.errors = append(p.errors, fmt.Sprintf("%s: %s", p.cur.Pos, msg))
}

// peekToken lazily fetches and caches the next token without disturbing
// lexer mode transitions driven by the *current* token.
func (p *Parser) peekToken() lexer.Token {
	if !p.hasPeek {
		p.peek = p.l.NextToken()
		p.hasPeek = true
	}
	return p.peek
}

func (p *Parser) nextToken() {
	if p.hasPeek {
		p.cur = p.peek
		p.hasPeek = false
		return
	}
	p.cur = p.l.NextToken()
}

func (p *Parser) curIs(tt lexer.TokenType) bool  { return p.cur.Type == tt }
func (p *Parser) peekIs(tt lexer.TokenType) bool  { return p.peekToken().Type == tt }

func (p *Parser) expect(tt lexer.TokenType) bool {
	if p.curIs(tt) {
		p.nextToken()
		return true
	}
	p.errorf("expected %v, got %v (%q)", tt, p.cur.Type, p.cur.Literal)
	return false
}

// synchronize skips tokens until the next statement boundary: a ';' at
// depth 0, or EOF/RUN. Used for error recovery (spec §4.2).
func (p *Parser) synchronize() {
	depth := 0
	for {
		switch p.cur.Type {
		case lexer.EOF:
			return
		case lexer.DO:
			depth++
		case lexer.END:
			if depth > 0 {
				depth--
			}
		case lexer.SEMI:
			if depth == 0 {
				p.nextToken()
				return
			}
		case lexer.RUN:
			if depth == 0 {
				return
			}
		}
		p.nextToken()
	}
}

// ParseProgram parses the whole token stream into a Program, recovering
// from syntax errors at statement boundaries (spec §4.2).
func (p *Parser) ParseProgram() *ast.Program {
	prog := &ast.Program{}
	for !p.curIs(lexer.EOF) {
		before := p.cur
		stmt := p.parseTopLevelStatement()
		if stmt != nil {
			prog.Statements = append(prog.Statements, stmt)
		}
		if p.cur == before && !p.curIs(lexer.EOF) {
			// Guard against a statement parser that made no progress.
			p.nextToken()
		}
	}
	return prog
}

// ParseStatement parses a single top-level statement and reports whether
// the input was complete, incomplete (missing a RUN;/QUIT; terminator —
// the REPL should keep reading lines), or malformed.
func (p *Parser) ParseStatement() (ast.Statement, Status) {
	if p.curIs(lexer.EOF) {
		return nil, StatusIncomplete
	}
	startErrs := len(p.errors)
	stmt := p.parseTopLevelStatement()
	if len(p.errors) > startErrs {
		if p.curIs(lexer.EOF) {
			return nil, StatusIncomplete
		}
		return nil, StatusError
	}
	return stmt, StatusOK
}

func (p *Parser) parseTopLevelStatement() ast.Statement {
	switch p.cur.Type {
	case lexer.SEMI:
		p.nextToken()
		return nil
	case lexer.DATA:
		return p.parseDataStep()
	case lexer.PROC:
		return p.parseProc()
	case lexer.OPTIONS:
		return p.parseOptionsStatement()
	case lexer.LIBNAME:
		return p.parseLibnameStatement()
	case lexer.TITLE:
		return p.parseTitleStatement()
	case lexer.PERCENT:
		return p.parseMacroTopLevel()
	default:
		p.errorf("unexpected token %v (%q) at top level", p.cur.Type, p.cur.Literal)
		p.synchronize()
		return nil
	}
}

func (p *Parser) parseOptionsStatement() ast.Statement {
	tok := p.cur
	p.nextToken()
	opts := map[string]string{}
	for !p.curIs(lexer.SEMI) && !p.curIs(lexer.EOF) {
		if !p.curIs(lexer.IDENT) {
			p.errorf("expected option name, got %v", p.cur.Type)
			p.synchronize()
			return &ast.OptionsStatement{Token: tok, Options: opts}
		}
		name := p.cur.Literal
		p.nextToken()
		value := ""
		if p.curIs(lexer.ASSIGN) {
			p.nextToken()
			value = p.cur.Literal
			p.nextToken()
		}
		opts[name] = value
	}
	p.expect(lexer.SEMI)
	return &ast.OptionsStatement{Token: tok, Options: opts}
}

func (p *Parser) parseLibnameStatement() ast.Statement {
	tok := p.cur
	p.nextToken()
	if !p.curIs(lexer.IDENT) {
		p.errorf("expected libref, got %v", p.cur.Type)
		p.synchronize()
		return nil
	}
	libref := p.cur.Literal
	p.nextToken()
	if !p.curIs(lexer.STRING) {
		p.errorf("expected quoted path, got %v", p.cur.Type)
		p.synchronize()
		return nil
	}
	path := p.cur.Literal
	p.nextToken()
	access := ""
	if p.curIs(lexer.IDENT) {
		access = p.cur.Literal
		p.nextToken()
	}
	p.expect(lexer.SEMI)
	return &ast.LibnameStatement{Token: tok, Libref: libref, Path: path, Access: access}
}

func (p *Parser) parseTitleStatement() ast.Statement {
	tok := p.cur
	p.nextToken()
	text := ""
	if p.curIs(lexer.STRING) {
		text = p.cur.Literal
		p.nextToken()
	}
	p.expect(lexer.SEMI)
	return &ast.TitleStatement{Token: tok, Text: text}
}

func (p *Parser) parseMacroTopLevel() ast.Statement {
	tok := p.cur
	p.nextToken()
	if !p.curIs(lexer.IDENT) && !p.curIs(lexer.MACRO_LET) && !p.curIs(lexer.MACRO_MACRO) {
		p.errorf("expected macro directive or name after '%%'")
		p.synchronize()
		return nil
	}
	name := p.cur.Literal
	p.nextToken()
	var args []string
	if p.curIs(lexer.LPAREN) {
		p.nextToken()
		for !p.curIs(lexer.RPAREN) && !p.curIs(lexer.EOF) {
			args = append(args, p.cur.Literal)
			p.nextToken()
			if p.curIs(lexer.COMMA) {
				p.nextToken()
			}
		}
		p.expect(lexer.RPAREN)
	}
	p.synchronize()
	return &ast.MacroCall{Token: tok, Name: name, Args: args}
}

// parseDatasetRef parses "libref.name" or "name" (spec §6).
func (p *Parser) parseDatasetRef() ast.DatasetRef {
	if !p.curIs(lexer.IDENT) {
		p.errorf("expected dataset name, got %v", p.cur.Type)
		return ast.DatasetRef{}
	}
	first := p.cur.Literal
	p.nextToken()
	if p.curIs(lexer.DOT) {
		p.nextToken()
		if !p.curIs(lexer.IDENT) {
			p.errorf("expected dataset name after '.'")
			return ast.DatasetRef{Libref: first}
		}
		name := p.cur.Literal
		p.nextToken()
		return ast.DatasetRef{Libref: first, Name: name}
	}
	return ast.DatasetRef{Name: first}
}

// ---- Expressions: precedence climbing (spec §4.2) ----

func (p *Parser) parseExpression(minPrec int) ast.Expression {
	left := p.parsePrefix()
	if left == nil {
		return nil
	}
	for {
		prec, ok := precedences[p.cur.Type]
		if !ok || prec < minPrec {
			break
		}
		opTok := p.cur
		op := operatorLiteral(opTok.Type)
		nextMin := prec + 1
		if opTok.Type == lexer.POWER {
			nextMin = prec // right-associative
		}
		p.nextToken()
		right := p.parseExpression(nextMin)
		if right == nil {
			return nil
		}
		left = &ast.BinaryExpression{Token: opTok, Left: left, Operator: op, Right: right}
	}
	return left
}

func operatorLiteral(tt lexer.TokenType) string {
	switch tt {
	case lexer.OR:
		return "or"
	case lexer.AND:
		return "and"
	case lexer.ASSIGN:
		return "="
	case lexer.EQ:
		return "=="
	case lexer.NOT_EQ:
		return "!="
	case lexer.LT:
		return "<"
	case lexer.LT_EQ:
		return "<="
	case lexer.GT:
		return ">"
	case lexer.GT_EQ:
		return ">="
	case lexer.PLUS:
		return "+"
	case lexer.MINUS:
		return "-"
	case lexer.STAR:
		return "*"
	case lexer.SLASH:
		return "/"
	case lexer.POWER:
		return "**"
	}
	return tt.String()
}

func (p *Parser) parsePrefix() ast.Expression {
	switch p.cur.Type {
	case lexer.MINUS, lexer.PLUS:
		tok := p.cur
		op := operatorLiteral(tok.Type)
		p.nextToken()
		right := p.parseExpression(PRODUCT)
		return &ast.UnaryExpression{Token: tok, Operator: op, Right: right}
	case lexer.NUMBER:
		return p.parseNumberLiteral()
	case lexer.STRING:
		tok := p.cur
		p.nextToken()
		return &ast.StringLiteral{Token: tok, Value: tok.Literal}
	case lexer.LPAREN:
		tok := p.cur
		p.nextToken()
		inner := p.parseExpression(LOWEST)
		p.expect(lexer.RPAREN)
		return &ast.GroupedExpression{Token: tok, Expression: inner}
	case lexer.IDENT:
		return p.parseIdentOrCallOrIndex()
	default:
		p.errorf("unexpected token %v (%q) in expression", p.cur.Type, p.cur.Literal)
		return nil
	}
}

func (p *Parser) parseNumberLiteral() ast.Expression {
	tok := p.cur
	var val float64
	fmt.Sscanf(tok.Literal, "%g", &val)
	p.nextToken()
	return &ast.NumberLiteral{Token: tok, Value: val}
}

func (p *Parser) parseIdentOrCallOrIndex() ast.Expression {
	tok := p.cur
	name := tok.Literal
	p.nextToken()
	if p.curIs(lexer.LPAREN) {
		p.nextToken()
		var args []ast.Expression
		for !p.curIs(lexer.RPAREN) && !p.curIs(lexer.EOF) {
			arg := p.parseExpression(LOWEST)
			if arg != nil {
				args = append(args, arg)
			}
			if p.curIs(lexer.COMMA) {
				p.nextToken()
			}
		}
		p.expect(lexer.RPAREN)
		return &ast.CallExpression{Token: tok, Function: name, Arguments: args}
	}
	if p.curIs(lexer.LBRACKET) {
		p.nextToken()
		idx := p.parseExpression(LOWEST)
		p.expect(lexer.RBRACKET)
		return &ast.IndexExpression{Token: tok, Array: name, Index: idx}
	}
	return &ast.Identifier{Token: tok, Value: name}
}
