package ast

import "github.com/sasds/sasds/internal/lexer"

// MacroLet is `%let NAME = VALUE;`. The parser does not build this node:
// the driver runs the macro preprocessor (internal/macro) over the source
// before parsing, and a `%`-prefixed statement that still reaches the
// parser becomes a MacroCall (spec §4.3's substitution happens pre-parse).
type MacroLet struct {
	Token lexer.Token
	Name  string
	Value string
}

func (m *MacroLet) statementNode()       {}
func (m *MacroLet) TokenLiteral() string { return m.Token.Literal }
func (m *MacroLet) Pos() lexer.Position  { return m.Token.Pos }
func (m *MacroLet) String() string       { return "%let " + m.Name + " = " + m.Value + ";" }

// MacroDefinition is `%macro NAME(p1, ...); body %mend;`.
type MacroDefinition struct {
	Token  lexer.Token
	Name   string
	Params []string
	Body   string // raw, unexpanded source text of the macro body
}

func (m *MacroDefinition) statementNode()       {}
func (m *MacroDefinition) TokenLiteral() string { return m.Token.Literal }
func (m *MacroDefinition) Pos() lexer.Position  { return m.Token.Pos }
func (m *MacroDefinition) String() string       { return "%macro " + m.Name + "(...); ... %mend;" }

// MacroCall is `%NAME(a1, ...);`.
type MacroCall struct {
	Token lexer.Token
	Name  string
	Args  []string
}

func (m *MacroCall) statementNode()       {}
func (m *MacroCall) TokenLiteral() string { return m.Token.Literal }
func (m *MacroCall) Pos() lexer.Position  { return m.Token.Pos }
func (m *MacroCall) String() string       { return "%" + m.Name + "(...);" }
