package lexer

import "testing"

func TestNextToken_Operators(t *testing.T) {
	input := `x = 1; y <> 2; z <= 3; a >= 4; b ** 2;`

	tests := []struct {
		wantType    TokenType
		wantLiteral string
	}{
		{IDENT, "x"}, {ASSIGN, "="}, {NUMBER, "1"}, {SEMI, ";"},
		{IDENT, "y"}, {NOT_EQ, "<>"}, {NUMBER, "2"}, {SEMI, ";"},
		{IDENT, "z"}, {LT_EQ, "<="}, {NUMBER, "3"}, {SEMI, ";"},
		{IDENT, "a"}, {GT_EQ, ">="}, {NUMBER, "4"}, {SEMI, ";"},
		{IDENT, "b"}, {POWER, "**"}, {NUMBER, "2"}, {SEMI, ";"},
		{EOF, ""},
	}

	l := New(input)
	for i, tt := range tests {
		tok := l.NextToken()
		if tok.Type != tt.wantType {
			t.Fatalf("test[%d]: wrong type. want=%v got=%v (literal %q)", i, tt.wantType, tok.Type, tok.Literal)
		}
		if tok.Literal != tt.wantLiteral {
			t.Fatalf("test[%d]: wrong literal. want=%q got=%q", i, tt.wantLiteral, tok.Literal)
		}
	}
}

func TestNextToken_KeywordsCaseInsensitive(t *testing.T) {
	l := New("data Out; set In; run;")
	want := []TokenType{DATA, IDENT, SEMI, SET, IDENT, SEMI, RUN, SEMI, EOF}
	for i, wt := range want {
		tok := l.NextToken()
		if tok.Type != wt {
			t.Fatalf("test[%d]: want=%v got=%v", i, wt, tok.Type)
		}
	}
}

func TestNextToken_ElseIf(t *testing.T) {
	l := New("if x then y = 1; else if z then y = 2; else y = 3;")
	var types []TokenType
	for {
		tok := l.NextToken()
		types = append(types, tok.Type)
		if tok.Type == EOF {
			break
		}
	}
	foundElseIf := false
	for _, tt := range types {
		if tt == ELSE_IF {
			foundElseIf = true
		}
	}
	if !foundElseIf {
		t.Fatalf("expected an ELSE_IF token, got types=%v", types)
	}
}

func TestNextToken_CommentAtStatementStart(t *testing.T) {
	l := New("* this is a comment;\nx = 1;")
	tok := l.NextToken()
	if tok.Type != IDENT || tok.Literal != "x" {
		t.Fatalf("expected comment to be skipped, got %v %q", tok.Type, tok.Literal)
	}
}

func TestNextToken_StarIsOperatorMidStatement(t *testing.T) {
	l := New("x = 2 * 3;")
	var types []TokenType
	for {
		tok := l.NextToken()
		types = append(types, tok.Type)
		if tok.Type == EOF {
			break
		}
	}
	want := []TokenType{IDENT, ASSIGN, NUMBER, STAR, NUMBER, SEMI, EOF}
	if len(types) != len(want) {
		t.Fatalf("want %d tokens, got %d: %v", len(want), len(types), types)
	}
	for i := range want {
		if types[i] != want[i] {
			t.Fatalf("token[%d]: want=%v got=%v", i, want[i], types[i])
		}
	}
}

func TestNextToken_StringLiteral(t *testing.T) {
	l := New(`name = 'ALICE';`)
	l.NextToken() // name
	l.NextToken() // =
	tok := l.NextToken()
	if tok.Type != STRING || tok.Literal != "ALICE" {
		t.Fatalf("want STRING 'ALICE', got %v %q", tok.Type, tok.Literal)
	}
}

func TestNextToken_UnterminatedString(t *testing.T) {
	l := New(`x = 'oops`)
	l.NextToken()
	l.NextToken()
	tok := l.NextToken()
	if tok.Type != ILLEGAL {
		t.Fatalf("expected ILLEGAL for unterminated string, got %v", tok.Type)
	}
	if len(l.Errors()) == 0 {
		t.Fatalf("expected a lexical error to be recorded")
	}
}

func TestNextToken_ArrayBracesAndIndexBrackets(t *testing.T) {
	l := New("array a{3} a1 a2 a3; a[1] = 1;")
	var types []TokenType
	for {
		tok := l.NextToken()
		types = append(types, tok.Type)
		if tok.Type == EOF {
			break
		}
	}
	want := []TokenType{
		ARRAY, IDENT, LBRACE, NUMBER, RBRACE, IDENT, IDENT, IDENT, SEMI,
		IDENT, LBRACKET, NUMBER, RBRACKET, ASSIGN, NUMBER, SEMI, EOF,
	}
	if len(types) != len(want) {
		t.Fatalf("want %d tokens, got %d: %v", len(want), len(types), types)
	}
	for i := range want {
		if types[i] != want[i] {
			t.Fatalf("token[%d]: want=%v got=%v", i, want[i], types[i])
		}
	}
}

func TestDatalinesBlock(t *testing.T) {
	l := New("input name $ age;\ndatalines;\nALICE 30\nBOB   25\n;\nrun;")
	// drive the lexer as the parser would: consume up through "DATALINES" and
	// its terminating ';', then signal datalines mode.
	var got []Token
	for {
		tok := l.NextToken()
		got = append(got, tok)
		if tok.Type == DATALINES {
			// next token is the ';' that starts the block
			semi := l.NextToken()
			got = append(got, semi)
			l.NoteDatalinesStart()
			continue
		}
		if tok.Type == EOF {
			break
		}
	}

	var content string
	found := false
	for _, tok := range got {
		if tok.Type == DATALINES_CONTENT {
			content = tok.Literal
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a DATALINES_CONTENT token, got %+v", got)
	}
	want := "ALICE 30\nBOB   25"
	if content != want {
		t.Fatalf("datalines content mismatch:\nwant=%q\ngot=%q", want, content)
	}
}
