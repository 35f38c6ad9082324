package parser

import (
	"strings"

	"github.com/sasds/sasds/internal/ast"
	"github.com/sasds/sasds/internal/lexer"
)

// parseProc dispatches `PROC SORT|MEANS|FREQ|PRINT|SQL ...; RUN;` (spec §4.7).
func (p *Parser) parseProc() ast.Statement {
	tok := p.cur
	p.nextToken() // consume PROC

	switch p.cur.Type {
	case lexer.SORT:
		return p.parseProcCommon(tok, ast.ProcSort)
	case lexer.MEANS:
		return p.parseProcCommon(tok, ast.ProcMeans)
	case lexer.FREQ:
		return p.parseProcCommon(tok, ast.ProcFreq)
	case lexer.PRINT:
		return p.parseProcCommon(tok, ast.ProcPrint)
	case lexer.SQL:
		return p.parseProcSQL(tok)
	default:
		p.errorf("unknown PROC %v (%q)", p.cur.Type, p.cur.Literal)
		p.synchronize()
		return nil
	}
}

func curLitUpper(p *Parser) string { return strings.ToUpper(p.cur.Literal) }

// parseDatasetOption reads a `DATA=libref.name` or `OUT=libref.name` clause
// (DATA lexes as the keyword token, OUT as a plain identifier).
func (p *Parser) parseDatasetOption() ast.DatasetRef {
	p.nextToken() // consume DATA/OUT
	p.expect(lexer.ASSIGN)
	return p.parseDatasetRef()
}

func (p *Parser) parseProcCommon(tok lexer.Token, kind ast.ProcKind) ast.Statement {
	p.nextToken() // consume SORT/MEANS/FREQ/PRINT

	proc := &ast.Proc{Token: tok, Kind: kind}

	for !p.curIs(lexer.SEMI) && !p.curIs(lexer.EOF) {
		switch {
		case p.curIs(lexer.DATA):
			proc.Data = p.parseDatasetOption()
		case p.curIs(lexer.IDENT) && curLitUpper(p) == "OUT":
			proc.Out = p.parseDatasetOption()
		case p.curIs(lexer.NODUPKEY):
			proc.NoDupKey = true
			p.nextToken()
		case p.curIs(lexer.NOOBS):
			proc.NoObs = true
			p.nextToken()
		case p.curIs(lexer.LABEL):
			proc.Label = true
			p.nextToken()
		case p.curIs(lexer.DUPLICATES):
			proc.Duplicates = true
			p.nextToken()
		case p.curIs(lexer.CHISQ):
			proc.Chisq = true
			p.nextToken()
		case p.curIs(lexer.OBS):
			p.nextToken()
			p.expect(lexer.ASSIGN)
			n := 0
			if p.curIs(lexer.NUMBER) {
				fmtScan(p.cur.Literal, &n)
				p.nextToken()
			}
			proc.Obs = n
		case p.curIs(lexer.STAT_N), p.curIs(lexer.STAT_MEAN), p.curIs(lexer.STAT_MEDIAN),
			p.curIs(lexer.STAT_STD), p.curIs(lexer.STAT_MIN), p.curIs(lexer.STAT_MAX):
			proc.Stats = append(proc.Stats, curLitUpper(p))
			p.nextToken()
		default:
			p.errorf("unexpected token %v (%q) in PROC statement", p.cur.Type, p.cur.Literal)
			p.synchronize()
			return proc
		}
	}
	p.expect(lexer.SEMI)

	for p.curIs(lexer.BY) || (p.curIs(lexer.IDENT) && (curLitUpper(p) == "VAR" || curLitUpper(p) == "TABLES" || curLitUpper(p) == "WHERE")) || p.curIs(lexer.WHERE) {
		switch {
		case p.curIs(lexer.BY):
			p.nextToken()
			proc.ByVars = p.parseByKeyList()
			p.expect(lexer.SEMI)
		case p.curIs(lexer.WHERE):
			p.nextToken()
			proc.Where = p.parseExpression(LOWEST)
			p.expect(lexer.SEMI)
		case curLitUpper(p) == "VAR":
			p.nextToken()
			names, stats := p.parseVarOrStatList()
			proc.VarVariables = append(proc.VarVariables, names...)
			proc.Stats = append(proc.Stats, stats...)
			p.expect(lexer.SEMI)
		case curLitUpper(p) == "TABLES":
			p.nextToken()
			proc.FreqPairs = p.parseFreqTables()
			p.expect(lexer.SEMI)
		default:
			p.nextToken()
		}
	}

	for !p.curIs(lexer.RUN) && !p.curIs(lexer.EOF) {
		p.nextToken()
	}
	p.expect(lexer.RUN)
	p.expect(lexer.SEMI)
	return proc
}

func (p *Parser) parseByKeyList() []ast.ByKey {
	var keys []ast.ByKey
	for p.curIs(lexer.IDENT) || isDescendingMarker(p.cur.Literal) {
		desc := false
		if isDescendingMarker(p.cur.Literal) {
			desc = true
			p.nextToken()
		}
		if !p.curIs(lexer.IDENT) {
			break
		}
		keys = append(keys, ast.ByKey{Name: p.cur.Literal, Descending: desc})
		p.nextToken()
	}
	return keys
}

// parseVarOrStatList reads PROC MEANS's `VAR a b c;` operand list, which may
// also include statistic-name tokens (N MEAN MEDIAN STD MIN MAX) when used
// directly as a statistics keyword list rather than variable names.
func (p *Parser) parseVarOrStatList() ([]string, []string) {
	var names, stats []string
	for {
		switch p.cur.Type {
		case lexer.STAT_N, lexer.STAT_MEAN, lexer.STAT_MEDIAN, lexer.STAT_STD, lexer.STAT_MIN, lexer.STAT_MAX:
			stats = append(stats, strings.ToUpper(p.cur.Literal))
			p.nextToken()
		case lexer.IDENT:
			names = append(names, p.cur.Literal)
			p.nextToken()
		default:
			return names, stats
		}
	}
}

// parseFreqTables reads PROC FREQ's `TABLES a*b a c;` list, collecting
// two-way pairs separately from single-variable entries (which are still
// recorded as a pair with an empty second element).
func (p *Parser) parseFreqTables() [][2]string {
	var pairs [][2]string
	for p.curIs(lexer.IDENT) {
		first := p.cur.Literal
		p.nextToken()
		second := ""
		if p.curIs(lexer.STAR) {
			p.nextToken()
			if p.curIs(lexer.IDENT) {
				second = p.cur.Literal
				p.nextToken()
			}
		}
		pairs = append(pairs, [2]string{first, second})
	}
	return pairs
}

// parseProcSQL parses the minimal `PROC SQL; SELECT ...; QUIT;` /
// `PROC SQL; CREATE TABLE ... AS SELECT ...; QUIT;` surface of spec §4.7.
// Constructs recognised but out of scope (joins, GROUP BY, HAVING) are
// surfaced as *ast.UnsupportedSQL rather than rejected outright.
func (p *Parser) parseProcSQL(tok lexer.Token) ast.Statement {
	p.nextToken() // consume SQL
	p.expect(lexer.SEMI)

	var stmt ast.Statement
	switch {
	case p.curIs(lexer.CREATE):
		stmt = p.parseCreateTableAsSelect()
	case p.curIs(lexer.SELECT):
		stmt = p.parseSelectStatement(ast.DatasetRef{})
	default:
		p.errorf("expected SELECT or CREATE TABLE in PROC SQL, got %v", p.cur.Type)
		p.synchronize()
	}

	for !p.curIs(lexer.QUIT) && !p.curIs(lexer.EOF) {
		p.nextToken()
	}
	p.expect(lexer.QUIT)
	p.expect(lexer.SEMI)

	_ = tok
	return stmt
}

func (p *Parser) parseCreateTableAsSelect() ast.Statement {
	ctok := p.cur
	p.nextToken() // CREATE
	p.expect(lexer.TABLE)
	into := p.parseDatasetRef()
	p.expect(lexer.AS)
	sel := p.parseSelectStatement(into)
	if s, ok := sel.(*ast.SQLStatement); ok {
		s.Kind = ast.SQLCreateTable
		s.TableName = into
		s.Token = ctok
		return s
	}
	return sel
}

// parseSelectStatement parses `SELECT col1, col2 FROM ref [WHERE expr]
// [ORDER BY key1, key2];`. into is set by CREATE TABLE ... AS SELECT.
func (p *Parser) parseSelectStatement(into ast.DatasetRef) ast.Statement {
	tok := p.cur
	p.nextToken() // SELECT

	var cols []string
	for !p.curIs(lexer.FROM) && !p.curIs(lexer.EOF) {
		if p.curIs(lexer.STAR) {
			cols = append(cols, "*")
			p.nextToken()
		} else if p.curIs(lexer.IDENT) {
			cols = append(cols, p.cur.Literal)
			p.nextToken()
		}
		if p.curIs(lexer.COMMA) {
			p.nextToken()
		}
	}
	if !p.expect(lexer.FROM) {
		return &ast.UnsupportedSQL{Token: tok, Reason: "missing FROM clause"}
	}
	from := p.parseDatasetRef()

	if p.curIs(lexer.COMMA) {
		// Multi-table FROM implies a join, which is out of scope (spec §4.7).
		for !p.curIs(lexer.SEMI) && !p.curIs(lexer.EOF) {
			p.nextToken()
		}
		return &ast.UnsupportedSQL{Token: tok, Reason: "multi-table join in FROM clause"}
	}

	var where ast.Expression
	if p.curIs(lexer.WHERE) {
		p.nextToken()
		where = p.parseExpression(LOWEST)
	}

	if p.curIs(lexer.GROUP) || p.curIs(lexer.HAVING) {
		reason := "GROUP BY aggregation"
		if p.curIs(lexer.HAVING) {
			reason = "HAVING clause"
		}
		for !p.curIs(lexer.SEMI) && !p.curIs(lexer.EOF) {
			p.nextToken()
		}
		return &ast.UnsupportedSQL{Token: tok, Reason: reason}
	}

	var orderBy []ast.ByKey
	if p.curIs(lexer.ORDER) {
		p.nextToken()
		p.expect(lexer.BY)
		orderBy = p.parseByKeyList()
	}

	p.expect(lexer.SEMI)

	return &ast.SQLStatement{
		Token: tok, Kind: ast.SQLSelect,
		Columns: cols, From: from, Where: where, OrderBy: orderBy, Into: into,
	}
}
