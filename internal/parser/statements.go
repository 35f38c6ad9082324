package parser

import (
	"github.com/sasds/sasds/internal/ast"
	"github.com/sasds/sasds/internal/lexer"
)

// parseDataStep parses `DATA out1 [out2 ...]; ... RUN;` (spec §4.6).
func (p *Parser) parseDataStep() ast.Statement {
	tok := p.cur
	p.nextToken()

	var outputs []ast.DatasetRef
	for p.curIs(lexer.IDENT) {
		outputs = append(outputs, p.parseDatasetRef())
		if p.curIs(lexer.COMMA) {
			p.nextToken()
		}
	}
	p.expect(lexer.SEMI)

	var body []ast.Statement
	for !p.curIs(lexer.RUN) && !p.curIs(lexer.EOF) {
		before := p.cur
		stmt := p.parseDataStepStatement()
		if stmt != nil {
			body = append(body, stmt)
		}
		if p.cur == before && !p.curIs(lexer.RUN) && !p.curIs(lexer.EOF) {
			p.nextToken()
		}
	}
	p.expect(lexer.RUN)
	p.expect(lexer.SEMI)

	return &ast.DataStep{Token: tok, Outputs: outputs, Body: body}
}

func (p *Parser) parseDataStepStatement() ast.Statement {
	switch p.cur.Type {
	case lexer.SEMI:
		p.nextToken()
		return nil
	case lexer.SET:
		return p.parseSetStatement()
	case lexer.MERGE:
		return p.parseMergeStatement()
	case lexer.BY:
		return p.parseByStatement()
	case lexer.IF:
		return p.parseIfStatement()
	case lexer.DO:
		return p.parseDoStatement()
	case lexer.OUTPUT:
		tok := p.cur
		p.nextToken()
		p.expect(lexer.SEMI)
		return &ast.OutputStatement{Token: tok}
	case lexer.DROP:
		return p.parseDropStatement()
	case lexer.KEEP:
		return p.parseKeepStatement()
	case lexer.RETAIN:
		return p.parseRetainStatement()
	case lexer.ARRAY:
		return p.parseArrayStatement()
	case lexer.INPUT:
		return p.parseInputStatement()
	case lexer.DATALINES:
		return p.parseDatalinesStatement()
	case lexer.IDENT:
		return p.parseAssignStatement()
	default:
		p.errorf("unexpected token %v (%q) in DATA step", p.cur.Type, p.cur.Literal)
		p.synchronizeWithinStep()
		return nil
	}
}

// synchronizeWithinStep resyncs to the next statement without running past
// the enclosing step's RUN; (spec §4.2).
func (p *Parser) synchronizeWithinStep() {
	depth := 0
	for {
		switch p.cur.Type {
		case lexer.EOF, lexer.RUN:
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
		}
		p.nextToken()
	}
}

func (p *Parser) parseSetStatement() ast.Statement {
	tok := p.cur
	p.nextToken()
	ref := p.parseDatasetRef()
	p.expect(lexer.SEMI)
	return &ast.SetStatement{Token: tok, Dataset: ref}
}

func (p *Parser) parseMergeStatement() ast.Statement {
	tok := p.cur
	p.nextToken()
	var refs []ast.DatasetRef
	for p.curIs(lexer.IDENT) {
		refs = append(refs, p.parseDatasetRef())
	}
	p.expect(lexer.SEMI)
	return &ast.MergeStatement{Token: tok, Datasets: refs}
}

func (p *Parser) parseByStatement() ast.Statement {
	tok := p.cur
	p.nextToken()
	var keys []ast.ByKey
	for p.curIs(lexer.IDENT) || p.curIs(lexer.STAT_MIN) || p.curIs(lexer.STAT_MAX) {
		desc := false
		if isDescendingMarker(p.cur.Literal) {
			desc = true
			p.nextToken()
		}
		name := p.cur.Literal
		p.nextToken()
		keys = append(keys, ast.ByKey{Name: name, Descending: desc})
	}
	p.expect(lexer.SEMI)
	return &ast.ByStatement{Token: tok, Keys: keys}
}

func isDescendingMarker(lit string) bool {
	return lit == "descending" || lit == "DESCENDING" || lit == "Descending"
}

func (p *Parser) parseIfStatement() ast.Statement {
	tok := p.cur
	p.nextToken()
	cond := p.parseExpression(LOWEST)
	if !p.expect(lexer.THEN) {
		p.synchronizeWithinStep()
		return nil
	}
	consequence := p.parseThenBody()

	stmt := &ast.IfStatement{Token: tok, Condition: cond, Consequence: consequence}
	for p.curIs(lexer.ELSE_IF) {
		p.nextToken()
		eiCond := p.parseExpression(LOWEST)
		p.expect(lexer.THEN)
		eiBody := p.parseThenBody()
		stmt.ElseIfs = append(stmt.ElseIfs, ast.ElseIfClause{Condition: eiCond, Body: eiBody})
	}
	if p.curIs(lexer.ELSE) {
		p.nextToken()
		stmt.Alternative = p.parseThenBody()
	}
	return stmt
}

// parseThenBody parses the single statement (or DO...END block) that
// follows THEN/ELSE.
func (p *Parser) parseThenBody() ast.Statement {
	if p.curIs(lexer.DO) {
		return p.parseDoBlock()
	}
	return p.parseDataStepStatement()
}

// parseDoBlock parses a plain `DO; ... END;` block (as used by IF/THEN
// bodies), distinct from parseDoStatement's iterative/conditional forms.
func (p *Parser) parseDoBlock() *ast.BlockStatement {
	tok := p.cur
	p.nextToken() // consume DO
	if p.curIs(lexer.SEMI) {
		p.nextToken()
	}
	block := &ast.BlockStatement{Token: tok}
	for !p.curIs(lexer.END) && !p.curIs(lexer.EOF) && !p.curIs(lexer.RUN) {
		before := p.cur
		stmt := p.parseDataStepStatement()
		if stmt != nil {
			block.Statements = append(block.Statements, stmt)
		}
		if p.cur == before {
			p.nextToken()
		}
	}
	p.expect(lexer.END)
	p.expect(lexer.SEMI)
	return block
}

func (p *Parser) parseDoStatement() ast.Statement {
	tok := p.cur
	p.nextToken()

	if p.curIs(lexer.WHILE) || p.curIs(lexer.UNTIL) {
		kind := ast.DoWhile
		if p.curIs(lexer.UNTIL) {
			kind = ast.DoUntil
		}
		p.nextToken()
		p.expect(lexer.LPAREN)
		cond := p.parseExpression(LOWEST)
		p.expect(lexer.RPAREN)
		if p.curIs(lexer.SEMI) {
			p.nextToken()
		}
		body := p.parseDoBody()
		return &ast.DoStatement{Token: tok, Kind: kind, Condition: cond, Body: body}
	}

	// DO var = start TO end [BY step];
	if !p.curIs(lexer.IDENT) {
		p.errorf("expected loop variable after DO")
		p.synchronizeWithinStep()
		return nil
	}
	varName := p.cur.Literal
	p.nextToken()
	p.expect(lexer.ASSIGN)
	start := p.parseExpression(LOWEST)
	p.expect(lexer.TO)
	end := p.parseExpression(LOWEST)
	var step ast.Expression
	if p.curIs(lexer.BY) {
		p.nextToken()
		step = p.parseExpression(LOWEST)
	}
	if p.curIs(lexer.SEMI) {
		p.nextToken()
	}
	body := p.parseDoBody()
	return &ast.DoStatement{Token: tok, Kind: ast.DoTo, Var: varName, Start: start, End: end, Step: step, Body: body}
}

// parseDoBody parses the statements up to (and consuming) the matching END;.
func (p *Parser) parseDoBody() *ast.BlockStatement {
	block := &ast.BlockStatement{Token: p.cur}
	for !p.curIs(lexer.END) && !p.curIs(lexer.EOF) && !p.curIs(lexer.RUN) {
		before := p.cur
		stmt := p.parseDataStepStatement()
		if stmt != nil {
			block.Statements = append(block.Statements, stmt)
		}
		if p.cur == before {
			p.nextToken()
		}
	}
	p.expect(lexer.END)
	p.expect(lexer.SEMI)
	return block
}

func (p *Parser) parseNameList() []string {
	var names []string
	for p.curIs(lexer.IDENT) {
		names = append(names, p.cur.Literal)
		p.nextToken()
	}
	return names
}

func (p *Parser) parseDropStatement() ast.Statement {
	tok := p.cur
	p.nextToken()
	names := p.parseNameList()
	p.expect(lexer.SEMI)
	return &ast.DropStatement{Token: tok, Names: names}
}

func (p *Parser) parseKeepStatement() ast.Statement {
	tok := p.cur
	p.nextToken()
	names := p.parseNameList()
	p.expect(lexer.SEMI)
	return &ast.KeepStatement{Token: tok, Names: names}
}

func (p *Parser) parseRetainStatement() ast.Statement {
	tok := p.cur
	p.nextToken()
	var names []string
	var inits []ast.Expression
	for p.curIs(lexer.IDENT) {
		names = append(names, p.cur.Literal)
		p.nextToken()
		var init ast.Expression
		if p.curIs(lexer.NUMBER) || p.curIs(lexer.STRING) {
			init = p.parseExpression(LOWEST)
		}
		inits = append(inits, init)
	}
	p.expect(lexer.SEMI)
	return &ast.RetainStatement{Token: tok, Names: names, Inits: inits}
}

func (p *Parser) parseArrayStatement() ast.Statement {
	tok := p.cur
	p.nextToken()
	if !p.curIs(lexer.IDENT) {
		p.errorf("expected array name")
		p.synchronizeWithinStep()
		return nil
	}
	name := p.cur.Literal
	p.nextToken()

	size := 0
	if p.curIs(lexer.LBRACE) {
		p.nextToken()
		if p.curIs(lexer.NUMBER) {
			fmtScan(p.cur.Literal, &size)
			p.nextToken()
		}
		p.expect(lexer.RBRACE)
	}

	vars := p.parseNameList()
	if size == 0 {
		size = len(vars)
	}
	p.expect(lexer.SEMI)
	return &ast.ArrayStatement{Token: tok, Name: name, Size: size, Variables: vars}
}

func fmtScan(lit string, out *int) {
	n := 0
	for _, r := range lit {
		if r < '0' || r > '9' {
			break
		}
		n = n*10 + int(r-'0')
	}
	*out = n
}

func (p *Parser) parseInputStatement() ast.Statement {
	tok := p.cur
	p.nextToken()
	var decls []ast.InputDecl
	for p.curIs(lexer.IDENT) {
		name := p.cur.Literal
		p.nextToken()
		isString := false
		if p.curIs(lexer.DOLLAR) {
			isString = true
			p.nextToken()
		}
		decls = append(decls, ast.InputDecl{Name: name, IsString: isString})
	}
	p.expect(lexer.SEMI)
	return &ast.InputStatement{Token: tok, Decls: decls}
}

// parseDatalinesStatement switches the lexer into raw-line mode right
// after consuming DATALINES's terminating ';', then reads the single
// DATALINES_CONTENT token it produces (spec §4.1/§4.6).
func (p *Parser) parseDatalinesStatement() ast.Statement {
	tok := p.cur
	p.nextToken() // cur becomes the ';' (read directly, not from a stale peek cache)
	if !p.curIs(lexer.SEMI) {
		p.errorf("expected ';' after DATALINES, got %v", p.cur.Type)
		return nil
	}
	p.l.NoteDatalinesStart()
	p.nextToken() // now reads DATALINES_CONTENT

	var lines []string
	if p.curIs(lexer.DATALINES_CONTENT) {
		lines = splitLines(p.cur.Literal)
		p.nextToken()
	} else {
		p.errorf("expected datalines content")
	}
	return &ast.DatalinesStatement{Token: tok, Lines: lines}
}

func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	var lines []string
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == '\n' {
			lines = append(lines, s[start:i])
			start = i + 1
		}
	}
	return lines
}

// parseAssignStatement parses `lhs = expr;` or `arr[i] = expr;` (spec §4.6.1).
func (p *Parser) parseAssignStatement() ast.Statement {
	tok := p.cur
	name := p.cur.Literal
	p.nextToken()

	var index ast.Expression
	if p.curIs(lexer.LBRACKET) {
		p.nextToken()
		index = p.parseExpression(LOWEST)
		p.expect(lexer.RBRACKET)
	}

	if !p.expect(lexer.ASSIGN) {
		p.synchronizeWithinStep()
		return nil
	}
	value := p.parseExpression(LOWEST)
	p.expect(lexer.SEMI)
	return &ast.AssignStatement{Token: tok, Target: name, ArrayIndex: index, Value: value}
}
