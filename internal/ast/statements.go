package ast

import (
	"strings"

	"github.com/sasds/sasds/internal/lexer"
)

// DatasetRef names a dataset as LIBREF.NAME, defaulting libref to WORK.
type DatasetRef struct {
	Libref string // "" means unspecified; resolves to WORK
	Name   string
}

func (r DatasetRef) String() string {
	if r.Libref == "" {
		return r.Name
	}
	return r.Libref + "." + r.Name
}

// ExpressionStatement wraps a bare expression used in statement position.
type ExpressionStatement struct {
	Token      lexer.Token
	Expression Expression
}

func (e *ExpressionStatement) statementNode()       {}
func (e *ExpressionStatement) TokenLiteral() string { return e.Token.Literal }
func (e *ExpressionStatement) Pos() lexer.Position  { return e.Token.Pos }
func (e *ExpressionStatement) String() string {
	if e.Expression != nil {
		return e.Expression.String()
	}
	return ""
}

// AssignStatement is `lhs = expr;` or `arr[index] = expr;` (spec §4.6.1).
type AssignStatement struct {
	Token      lexer.Token
	Target     string     // variable name, for plain assignment
	ArrayIndex Expression // non-nil when Target indexes an array
	Value      Expression
}

func (a *AssignStatement) statementNode()       {}
func (a *AssignStatement) TokenLiteral() string { return a.Token.Literal }
func (a *AssignStatement) Pos() lexer.Position  { return a.Token.Pos }
func (a *AssignStatement) String() string {
	if a.ArrayIndex != nil {
		return a.Target + "[" + a.ArrayIndex.String() + "] = " + a.Value.String() + ";"
	}
	return a.Target + " = " + a.Value.String() + ";"
}

// IfStatement is `IF cond THEN stmt [ELSE IF cond THEN stmt]... [ELSE stmt]`.
type IfStatement struct {
	Token       lexer.Token
	Condition   Expression
	Consequence Statement
	ElseIfs     []ElseIfClause
	Alternative Statement // nil if no ELSE
}

type ElseIfClause struct {
	Condition Expression
	Body      Statement
}

func (i *IfStatement) statementNode()       {}
func (i *IfStatement) TokenLiteral() string { return i.Token.Literal }
func (i *IfStatement) Pos() lexer.Position  { return i.Token.Pos }
func (i *IfStatement) String() string {
	var sb strings.Builder
	sb.WriteString("if ")
	sb.WriteString(i.Condition.String())
	sb.WriteString(" then ")
	sb.WriteString(i.Consequence.String())
	for _, ei := range i.ElseIfs {
		sb.WriteString(" else if ")
		sb.WriteString(ei.Condition.String())
		sb.WriteString(" then ")
		sb.WriteString(ei.Body.String())
	}
	if i.Alternative != nil {
		sb.WriteString(" else ")
		sb.WriteString(i.Alternative.String())
	}
	return sb.String()
}

// BlockStatement groups several statements (used as THEN/ELSE/DO bodies).
type BlockStatement struct {
	Token      lexer.Token
	Statements []Statement
}

func (b *BlockStatement) statementNode()       {}
func (b *BlockStatement) TokenLiteral() string { return b.Token.Literal }
func (b *BlockStatement) Pos() lexer.Position  { return b.Token.Pos }
func (b *BlockStatement) String() string {
	var sb strings.Builder
	sb.WriteString("do; ")
	for _, s := range b.Statements {
		sb.WriteString(s.String())
		sb.WriteString(" ")
	}
	sb.WriteString("end;")
	return sb.String()
}

// OutputStatement is the bare `OUTPUT;` statement.
type OutputStatement struct {
	Token lexer.Token
}

func (o *OutputStatement) statementNode()       {}
func (o *OutputStatement) TokenLiteral() string { return o.Token.Literal }
func (o *OutputStatement) Pos() lexer.Position  { return o.Token.Pos }
func (o *OutputStatement) String() string       { return "output;" }

// DropStatement/KeepStatement record variable name lists (spec §4.6.1).
type DropStatement struct {
	Token lexer.Token
	Names []string
}

func (d *DropStatement) statementNode()       {}
func (d *DropStatement) TokenLiteral() string { return d.Token.Literal }
func (d *DropStatement) Pos() lexer.Position  { return d.Token.Pos }
func (d *DropStatement) String() string       { return "drop " + strings.Join(d.Names, " ") + ";" }

type KeepStatement struct {
	Token lexer.Token
	Names []string
}

func (k *KeepStatement) statementNode()       {}
func (k *KeepStatement) TokenLiteral() string { return k.Token.Literal }
func (k *KeepStatement) Pos() lexer.Position  { return k.Token.Pos }
func (k *KeepStatement) String() string       { return "keep " + strings.Join(k.Names, " ") + ";" }

// RetainStatement sets retain flags, optionally with initial values.
type RetainStatement struct {
	Token lexer.Token
	Names []string
	Inits []Expression // parallel to Names; nil entry means no explicit initial
}

func (r *RetainStatement) statementNode()       {}
func (r *RetainStatement) TokenLiteral() string { return r.Token.Literal }
func (r *RetainStatement) Pos() lexer.Position  { return r.Token.Pos }
func (r *RetainStatement) String() string       { return "retain " + strings.Join(r.Names, " ") + ";" }

// ArrayStatement is `ARRAY name {N} v1 ... vN;` (spec §4.6.2).
type ArrayStatement struct {
	Token     lexer.Token
	Name      string
	Size      int
	Variables []string
}

func (a *ArrayStatement) statementNode()       {}
func (a *ArrayStatement) TokenLiteral() string { return a.Token.Literal }
func (a *ArrayStatement) Pos() lexer.Position  { return a.Token.Pos }
func (a *ArrayStatement) String() string {
	return "array " + a.Name + "{" + a.Variables[0] + "}..."
}

// DoLoopKind distinguishes the three DO-loop forms of spec §4.6.1.
type DoLoopKind int

const (
	DoTo DoLoopKind = iota
	DoWhile
	DoUntil
)

// DoStatement is an iterative or conditional DO/END block.
type DoStatement struct {
	Token lexer.Token
	Kind  DoLoopKind

	// DoTo fields.
	Var   string
	Start Expression
	End   Expression
	Step  Expression // nil means BY 1

	// DoWhile/DoUntil field.
	Condition Expression

	Body *BlockStatement
}

func (d *DoStatement) statementNode()       {}
func (d *DoStatement) TokenLiteral() string { return d.Token.Literal }
func (d *DoStatement) Pos() lexer.Position  { return d.Token.Pos }
func (d *DoStatement) String() string {
	switch d.Kind {
	case DoWhile:
		return "do while(" + d.Condition.String() + "); " + d.Body.String()
	case DoUntil:
		return "do until(" + d.Condition.String() + "); " + d.Body.String()
	default:
		return "do " + d.Var + " = " + d.Start.String() + " to " + d.End.String() + "; " + d.Body.String()
	}
}

// MergeStatement is `MERGE a b ...;` — paired with a following BY statement.
type MergeStatement struct {
	Token    lexer.Token
	Datasets []DatasetRef
}

func (m *MergeStatement) statementNode()       {}
func (m *MergeStatement) TokenLiteral() string { return m.Token.Literal }
func (m *MergeStatement) Pos() lexer.Position  { return m.Token.Pos }
func (m *MergeStatement) String() string {
	names := make([]string, len(m.Datasets))
	for i, d := range m.Datasets {
		names[i] = d.String()
	}
	return "merge " + strings.Join(names, " ") + ";"
}

// SetStatement is `SET dataset;` naming the step's single input dataset.
type SetStatement struct {
	Token   lexer.Token
	Dataset DatasetRef
}

func (s *SetStatement) statementNode()       {}
func (s *SetStatement) TokenLiteral() string { return s.Token.Literal }
func (s *SetStatement) Pos() lexer.Position  { return s.Token.Pos }
func (s *SetStatement) String() string       { return "set " + s.Dataset.String() + ";" }

// ByStatement names the BY variables used by MERGE or PROC SORT/within steps.
type ByStatement struct {
	Token lexer.Token
	Keys  []ByKey
}

type ByKey struct {
	Name       string
	Descending bool
}

func (b *ByStatement) statementNode()       {}
func (b *ByStatement) TokenLiteral() string { return b.Token.Literal }
func (b *ByStatement) Pos() lexer.Position  { return b.Token.Pos }
func (b *ByStatement) String() string {
	names := make([]string, len(b.Keys))
	for i, k := range b.Keys {
		names[i] = k.Name
	}
	return "by " + strings.Join(names, " ") + ";"
}

// InputDecl is one variable declared by an INPUT statement.
type InputDecl struct {
	Name     string
	IsString bool
}

// InputStatement is `INPUT name $ age ...;` declaring datalines fields.
type InputStatement struct {
	Token lexer.Token
	Decls []InputDecl
}

func (in *InputStatement) statementNode()       {}
func (in *InputStatement) TokenLiteral() string { return in.Token.Literal }
func (in *InputStatement) Pos() lexer.Position  { return in.Token.Pos }
func (in *InputStatement) String() string       { return "input ...;" }

// DatalinesStatement carries the raw DATALINES_CONTENT split into lines.
type DatalinesStatement struct {
	Token lexer.Token
	Lines []string
}

func (d *DatalinesStatement) statementNode()       {}
func (d *DatalinesStatement) TokenLiteral() string { return d.Token.Literal }
func (d *DatalinesStatement) Pos() lexer.Position  { return d.Token.Pos }
func (d *DatalinesStatement) String() string       { return "datalines; ...;" }

// DataStep is the top-level `DATA out; ... RUN;` construct (spec §4.6).
type DataStep struct {
	Token   lexer.Token
	Outputs []DatasetRef // one or more output datasets (first is primary)
	Body    []Statement
}

func (d *DataStep) statementNode()       {}
func (d *DataStep) TokenLiteral() string { return d.Token.Literal }
func (d *DataStep) Pos() lexer.Position  { return d.Token.Pos }
func (d *DataStep) String() string {
	names := make([]string, len(d.Outputs))
	for i, o := range d.Outputs {
		names[i] = o.String()
	}
	return "data " + strings.Join(names, " ") + "; ... run;"
}

// OptionsStatement is a bare `OPTIONS name=value ...;` statement.
type OptionsStatement struct {
	Token   lexer.Token
	Options map[string]string
}

func (o *OptionsStatement) statementNode()       {}
func (o *OptionsStatement) TokenLiteral() string { return o.Token.Literal }
func (o *OptionsStatement) Pos() lexer.Position  { return o.Token.Pos }
func (o *OptionsStatement) String() string       { return "options ...;" }

// LibnameStatement is `LIBNAME libref 'path' [access];`.
type LibnameStatement struct {
	Token  lexer.Token
	Libref string
	Path   string
	Access string // "", "READ-ONLY" etc.
}

func (l *LibnameStatement) statementNode()       {}
func (l *LibnameStatement) TokenLiteral() string { return l.Token.Literal }
func (l *LibnameStatement) Pos() lexer.Position  { return l.Token.Pos }
func (l *LibnameStatement) String() string       { return "libname " + l.Libref + " '" + l.Path + "';" }

// TitleStatement is `TITLE 'text';`.
type TitleStatement struct {
	Token lexer.Token
	Text  string
}

func (t *TitleStatement) statementNode()       {}
func (t *TitleStatement) TokenLiteral() string { return t.Token.Literal }
func (t *TitleStatement) Pos() lexer.Position  { return t.Token.Pos }
func (t *TitleStatement) String() string       { return "title '" + t.Text + "';" }
