package ast

import (
	"strings"

	"github.com/sasds/sasds/internal/lexer"
)

// ProcKind identifies which PROC a Proc node represents (spec §4.7).
type ProcKind int

const (
	ProcSort ProcKind = iota
	ProcMeans
	ProcFreq
	ProcPrint
	ProcSQL
)

// Proc is the shared shape for SORT/MEANS/FREQ/PRINT; SQL uses SQLStatement
// instead because its body is a nested SELECT/CREATE TABLE grammar.
type Proc struct {
	Token lexer.Token
	Kind  ProcKind

	Data DatasetRef
	Out  DatasetRef // zero value means "in place" / no OUT=

	ByVars      []ByKey
	VarVariables []string // VAR statement operands; spec §9 Open Question 2

	// SORT options.
	NoDupKey bool

	// MEANS/FREQ/PRINT options.
	Stats      []string // N, MEAN, MEDIAN, STD, MIN, MAX
	Obs        int      // 0 means unset
	NoObs      bool
	Label      bool
	Duplicates bool
	Chisq      bool
	FreqPairs  [][2]string // var1*var2 tabulations

	Where Expression
}

func (p *Proc) statementNode()       {}
func (p *Proc) TokenLiteral() string { return p.Token.Literal }
func (p *Proc) Pos() lexer.Position  { return p.Token.Pos }
func (p *Proc) String() string {
	var sb strings.Builder
	sb.WriteString("proc ")
	switch p.Kind {
	case ProcSort:
		sb.WriteString("sort")
	case ProcMeans:
		sb.WriteString("means")
	case ProcFreq:
		sb.WriteString("freq")
	case ProcPrint:
		sb.WriteString("print")
	}
	sb.WriteString(" data=" + p.Data.String() + "; run;")
	return sb.String()
}

// SQLKind distinguishes the minimal SQL surface of spec §4.7.
type SQLKind int

const (
	SQLSelect SQLKind = iota
	SQLCreateTable
)

// SQLStatement is the body of `PROC SQL; ... ; QUIT;` (one statement here).
type SQLStatement struct {
	Token lexer.Token
	Kind  SQLKind

	// SELECT fields.
	Columns   []string // "*" or explicit column names
	From      DatasetRef
	Where     Expression
	OrderBy   []ByKey
	Into      DatasetRef // for CREATE TABLE ... AS SELECT

	// CREATE TABLE fields.
	TableName DatasetRef
}

func (s *SQLStatement) statementNode()       {}
func (s *SQLStatement) TokenLiteral() string { return s.Token.Literal }
func (s *SQLStatement) Pos() lexer.Position  { return s.Token.Pos }
func (s *SQLStatement) String() string       { return "proc sql; ...; quit;" }

// UnsupportedSQL marks a recognised-but-unimplemented SQL construct (joins,
// GROUP BY aggregation, HAVING) per spec §4.7 "surfaced as UnsupportedSql".
type UnsupportedSQL struct {
	Token  lexer.Token
	Reason string
}

func (u *UnsupportedSQL) statementNode()       {}
func (u *UnsupportedSQL) TokenLiteral() string { return u.Token.Literal }
func (u *UnsupportedSQL) Pos() lexer.Position  { return u.Token.Pos }
func (u *UnsupportedSQL) String() string       { return "/* unsupported sql: " + u.Reason + " */" }
