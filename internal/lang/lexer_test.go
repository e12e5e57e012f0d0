package lang

import "testing"

func tokenTexts(toks []Token) []string {
	var out []string
	for _, t := range toks {
		if t.Kind == TokEOL || t.Kind == TokEOF {
			continue
		}
		out = append(out, t.Text)
	}
	return out
}

func TestLexerRecognizesPrefixTokens(t *testing.T) {
	var diags []Diagnostic
	lx := NewLexer("test.mayu", []byte("key S-A = B\n"), &diags)
	toks := lx.Tokens()
	texts := tokenTexts(toks)
	want := []string{"key", "S-", "A", "=", "B"}
	if len(texts) != len(want) {
		t.Fatalf("got %v want %v", texts, want)
	}
	for i := range want {
		if texts[i] != want[i] {
			t.Errorf("token %d: got %q want %q", i, texts[i], want[i])
		}
	}
	if len(diags) != 0 {
		t.Errorf("unexpected diagnostics: %v", diags)
	}
}

func TestLexerCommentRunsToEndOfLine(t *testing.T) {
	var diags []Diagnostic
	lx := NewLexer("test.mayu", []byte("key A = B # trailing comment\n"), &diags)
	toks := lx.Tokens()
	texts := tokenTexts(toks)
	want := []string{"key", "A", "=", "B"}
	if len(texts) != len(want) {
		t.Fatalf("got %v want %v", texts, want)
	}
}

func TestLexerQuotedStringEscapes(t *testing.T) {
	var diags []Diagnostic
	lx := NewLexer("test.mayu", []byte(`"a\nb\tc"` + "\n"), &diags)
	toks := lx.Tokens()
	if toks[0].Kind != TokString {
		t.Fatalf("expected a string token, got %v", toks[0])
	}
	if toks[0].Value != "a\nb\tc" {
		t.Errorf("got %q want %q", toks[0].Value, "a\nb\tc")
	}
}

func TestLexerLineContinuation(t *testing.T) {
	var diags []Diagnostic
	lx := NewLexer("test.mayu", []byte("key A \\\n= B\n"), &diags)
	toks := lx.Tokens()
	texts := tokenTexts(toks)
	want := []string{"key", "A", "=", "B"}
	if len(texts) != len(want) {
		t.Fatalf("got %v want %v (continuation should join the two lines)", texts, want)
	}
}

func TestLexerRegexLiteral(t *testing.T) {
	var diags []Diagnostic
	lx := NewLexer("test.mayu", []byte(`window Foo ( /^gedit$/ )` + "\n"), &diags)
	toks := lx.Tokens()
	var regexToks []Token
	for _, tk := range toks {
		if tk.Kind == TokRegex {
			regexToks = append(regexToks, tk)
		}
	}
	if len(regexToks) != 1 || regexToks[0].Text != "^gedit$" {
		t.Fatalf("expected one regex token with body ^gedit$, got %v", regexToks)
	}
}

func TestLexerInvalidUTF8Resynchronizes(t *testing.T) {
	var diags []Diagnostic
	lx := NewLexer("test.mayu", []byte("key A = B\n\xff\xfe\nkey C = D\n"), &diags)
	toks := lx.Tokens()
	if len(diags) == 0 {
		t.Error("expected a diagnostic for the invalid UTF-8 line")
	}
	// The following line must still tokenize correctly.
	found := false
	for _, tk := range toks {
		if tk.Text == "C" {
			found = true
		}
	}
	if !found {
		t.Error("expected tokenizer to resynchronize at the next line")
	}
}
