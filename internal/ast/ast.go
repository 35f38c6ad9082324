// Package ast defines the tagged-union AST for the SAS-style step language.
// Each statement or expression kind is its own concrete struct implementing
// a small marker interface; dispatch is by type switch, never RTTI/dynamic
// casts (spec.md §9).
package ast

import (
	"bytes"
	"strings"

	"github.com/sasds/sasds/internal/lexer"
)

// Node is the base interface every AST node implements.
type Node interface {
	TokenLiteral() string
	String() string
	Pos() lexer.Position
}

// Expression is any node that produces a value.
type Expression interface {
	Node
	expressionNode()
}

// Statement is any node that performs an action.
type Statement interface {
	Node
	statementNode()
}

// Program is the root node: a linear sequence of top-level steps.
type Program struct {
	Statements []Statement
}

func (p *Program) TokenLiteral() string {
	if len(p.Statements) > 0 {
		return p.Statements[0].TokenLiteral()
	}
	return ""
}

func (p *Program) String() string {
	var out bytes.Buffer
	for _, s := range p.Statements {
		out.WriteString(s.String())
		out.WriteString("\n")
	}
	return out.String()
}

func (p *Program) Pos() lexer.Position {
	if len(p.Statements) > 0 {
		return p.Statements[0].Pos()
	}
	return lexer.Position{Line: 1, Column: 1}
}

// ---- Expressions ----

type Identifier struct {
	Token lexer.Token
	Value string
}

func (i *Identifier) expressionNode()      {}
func (i *Identifier) TokenLiteral() string { return i.Token.Literal }
func (i *Identifier) String() string       { return i.Value }
func (i *Identifier) Pos() lexer.Position  { return i.Token.Pos }

type NumberLiteral struct {
	Token lexer.Token
	Value float64
}

func (n *NumberLiteral) expressionNode()      {}
func (n *NumberLiteral) TokenLiteral() string { return n.Token.Literal }
func (n *NumberLiteral) String() string       { return n.Token.Literal }
func (n *NumberLiteral) Pos() lexer.Position  { return n.Token.Pos }

type StringLiteral struct {
	Token lexer.Token
	Value string
}

func (s *StringLiteral) expressionNode()      {}
func (s *StringLiteral) TokenLiteral() string { return s.Token.Literal }
func (s *StringLiteral) String() string       { return "'" + s.Value + "'" }
func (s *StringLiteral) Pos() lexer.Position  { return s.Token.Pos }

// BinaryExpression covers the whole precedence-climbing grammar of §4.2:
// or/and, comparisons, + -, * /, **.
type BinaryExpression struct {
	Token    lexer.Token
	Left     Expression
	Operator string
	Right    Expression
}

func (b *BinaryExpression) expressionNode()      {}
func (b *BinaryExpression) TokenLiteral() string { return b.Token.Literal }
func (b *BinaryExpression) Pos() lexer.Position  { return b.Token.Pos }
func (b *BinaryExpression) String() string {
	return "(" + b.Left.String() + " " + b.Operator + " " + b.Right.String() + ")"
}

// UnaryExpression covers unary minus/plus.
type UnaryExpression struct {
	Token    lexer.Token
	Operator string
	Right    Expression
}

func (u *UnaryExpression) expressionNode()      {}
func (u *UnaryExpression) TokenLiteral() string { return u.Token.Literal }
func (u *UnaryExpression) Pos() lexer.Position  { return u.Token.Pos }
func (u *UnaryExpression) String() string       { return "(" + u.Operator + u.Right.String() + ")" }

// GroupedExpression is a parenthesized expression.
type GroupedExpression struct {
	Token      lexer.Token
	Expression Expression
}

func (g *GroupedExpression) expressionNode()      {}
func (g *GroupedExpression) TokenLiteral() string { return g.Token.Literal }
func (g *GroupedExpression) Pos() lexer.Position  { return g.Token.Pos }
func (g *GroupedExpression) String() string       { return "(" + g.Expression.String() + ")" }

// CallExpression is `ident(args)` — a built-in function call (spec §4.6.1).
type CallExpression struct {
	Token     lexer.Token // the function name token
	Function  string
	Arguments []Expression
}

func (c *CallExpression) expressionNode()      {}
func (c *CallExpression) TokenLiteral() string { return c.Token.Literal }
func (c *CallExpression) Pos() lexer.Position  { return c.Token.Pos }
func (c *CallExpression) String() string {
	args := make([]string, len(c.Arguments))
	for i, a := range c.Arguments {
		args[i] = a.String()
	}
	return c.Function + "(" + strings.Join(args, ", ") + ")"
}

// IndexExpression is `ident[expr]` — an array element reference (spec §4.6.2).
type IndexExpression struct {
	Token lexer.Token // '['
	Array string
	Index Expression
}

func (ix *IndexExpression) expressionNode()      {}
func (ix *IndexExpression) TokenLiteral() string { return ix.Token.Literal }
func (ix *IndexExpression) Pos() lexer.Position  { return ix.Token.Pos }
func (ix *IndexExpression) String() string       { return ix.Array + "[" + ix.Index.String() + "]" }
