package lang

import (
	"fmt"
	"strings"
)

const maxIncludeDepth = 32

// FileLoader resolves an include path (relative to the including file)
// to its contents, so tests and the real CLI can both inject how files
// are read without the compiler touching the filesystem directly.
type FileLoader interface {
	Load(path string) ([]byte, error)
	// Resolve returns the path `rel` resolves to when included from
	// `fromFile`, for circular-include detection.
	Resolve(fromFile, rel string) string
}

// Parser turns tokenized source into a flat []Stmt, handling include,
// conditional-compilation (if/elseif/else/endif), and define directives
// inline — those never reach the binder as Stmts since they are fully
// resolved here against the symbol set.
type Parser struct {
	loader      FileLoader
	symbols     map[string]bool
	diags       []Diagnostic
	includeStk  []string
	fatal       bool
}

// NewParser returns a Parser seeded with the given symbol set (`-D`
// command-line defines plus any builtin symbols).
func NewParser(loader FileLoader, seedSymbols map[string]bool) *Parser {
	symbols := make(map[string]bool, len(seedSymbols))
	for k, v := range seedSymbols {
		symbols[k] = v
	}
	return &Parser{loader: loader, symbols: symbols}
}

// ParseFile parses file and every file it (transitively) includes,
// returning the flattened, condition-resolved statement list.
func (p *Parser) ParseFile(file string) ([]Stmt, []Diagnostic) {
	stmts := p.parseFileInner(file)
	return stmts, p.diags
}

func (p *Parser) parseFileInner(file string) []Stmt {
	if p.fatal {
		return nil
	}
	for _, f := range p.includeStk {
		if f == file {
			p.fatalf(file, 0, "circular include: %s -> %s", strings.Join(p.includeStk, " -> "), file)
			return nil
		}
	}
	if len(p.includeStk) >= maxIncludeDepth {
		p.fatalf(file, 0, "include depth exceeds %d: %s", maxIncludeDepth, strings.Join(p.includeStk, " -> "))
		return nil
	}

	data, err := p.loader.Load(file)
	if err != nil {
		p.errorf(file, 0, "read %s: %v", file, err)
		return nil
	}
	decoded, err := DecodeSource(data)
	if err != nil {
		p.errorf(file, 0, "decode %s: %v", file, err)
		return nil
	}

	p.includeStk = append(p.includeStk, file)
	defer func() { p.includeStk = p.includeStk[:len(p.includeStk)-1] }()

	lx := NewLexer(file, decoded, &p.diags)
	toks := lx.Tokens()

	return p.parseStatements(file, toks)
}

func (p *Parser) fatalf(file string, line int, format string, args ...any) {
	p.diags = append(p.diags, Diagnostic{File: file, Line: line, Message: formatf(format, args...), Fatal: true})
	p.fatal = true
}

func (p *Parser) errorf(file string, line int, format string, args ...any) {
	p.diags = append(p.diags, Diagnostic{File: file, Line: line, Message: formatf(format, args...)})
}

// condFrame tracks one level of if/elseif/else/endif nesting: active
// reports whether statements under the current branch should be kept,
// and taken reports whether any branch in this chain has already fired
// (so a later elseif/else is skipped even if its own condition is true).
type condFrame struct {
	active bool
	taken  bool
}

func (p *Parser) parseStatements(file string, toks []Token) []Stmt {
	var out []Stmt
	var condStack []condFrame
	active := func() bool {
		for _, f := range condStack {
			if !f.active {
				return false
			}
		}
		return true
	}

	lines := splitLines(toks)
	for _, line := range lines {
		if p.fatal {
			return out
		}
		if len(line) == 0 {
			continue
		}
		head := line[0]
		if head.Kind != TokSymbol {
			if active() {
				p.errorf(file, head.Line, "expected statement keyword, found %s", head)
			}
			continue
		}

		switch head.Text {
		case "include":
			if !active() {
				continue
			}
			if len(line) < 2 {
				p.errorf(file, head.Line, "include requires a path")
				continue
			}
			rel := line[1].Value
			resolved := p.loader.Resolve(file, rel)
			out = append(out, p.parseFileInner(resolved)...)

		case "define":
			if active() && len(line) >= 2 {
				p.symbols[line[1].Text] = true
			}

		case "if":
			cond := p.evalCond(file, line[1:])
			condStack = append(condStack, condFrame{active: active() && cond, taken: cond})

		case "elseif", "elif":
			if len(condStack) == 0 {
				p.errorf(file, head.Line, "%s without matching if", head.Text)
				continue
			}
			top := &condStack[len(condStack)-1]
			parentActive := true
			if len(condStack) > 1 {
				parentActive = condStack[len(condStack)-2].active
			}
			cond := p.evalCond(file, line[1:])
			top.active = parentActive && !top.taken && cond
			if cond {
				top.taken = true
			}

		case "else":
			if len(condStack) == 0 {
				p.errorf(file, head.Line, "else without matching if")
				continue
			}
			top := &condStack[len(condStack)-1]
			parentActive := true
			if len(condStack) > 1 {
				parentActive = condStack[len(condStack)-2].active
			}
			top.active = parentActive && !top.taken
			top.taken = true

		case "endif":
			if len(condStack) == 0 {
				p.errorf(file, head.Line, "endif without matching if")
				continue
			}
			condStack = condStack[:len(condStack)-1]

		default:
			if !active() {
				continue
			}
			stmt, ok := p.parseStmt(file, line)
			if ok {
				out = append(out, stmt)
			}
		}
	}

	if len(condStack) > 0 {
		p.fatalf(file, 0, "unterminated if block(s): %d still open at end of file", len(condStack))
	}
	return out
}

func (p *Parser) evalCond(file string, toks []Token) bool {
	negate := false
	i := 0
	if i < len(toks) && toks[i].Kind == TokPrefix && toks[i].Text == "!" {
		negate = true
		i++
	}
	result := false
	op := ""
	for i < len(toks) {
		t := toks[i]
		switch t.Kind {
		case TokSymbol:
			val := p.symbols[t.Text]
			switch op {
			case "&&":
				result = result && val
			case "||":
				result = result || val
			default:
				result = val
			}
		case TokPrefix:
			// "&&"/"||" are prefix-table entries, so they arrive as
			// TokPrefix tokens.
			op = t.Text
		}
		i++
		if i < len(toks) && (toks[i].Text == "&&" || toks[i].Text == "||") {
			op = toks[i].Text
			i++
		}
	}
	if negate {
		result = !result
	}
	return result
}

func (p *Parser) parseStmt(file string, line []Token) (Stmt, bool) {
	head := line[0]
	switch head.Text {
	case "def":
		return p.parseDef(file, line)
	case "keymap", "keymap2":
		return p.parseKeymap(file, line)
	case "window":
		return p.parseWindow(file, line)
	case "key":
		return p.parseKey(file, line, StmtKey)
	case "event":
		return p.parseKey(file, line, StmtEvent)
	case "mod":
		return p.parseMod(file, line)
	case "keyseq":
		return p.parseKeySeqDecl(file, line)
	default:
		p.errorf(file, head.Line, "unknown statement %q", head.Text)
		return Stmt{}, false
	}
}

func (p *Parser) parseDef(file string, line []Token) (Stmt, bool) {
	if len(line) < 2 {
		p.errorf(file, line[0].Line, "def requires a sub-kind (key/mod/sync/alias/subst/numbermod/option)")
		return Stmt{}, false
	}
	kind := line[1].Text
	s := Stmt{Kind: StmtDef, Line: line[0].Line, DefKind: kind}
	rest := line[2:]
	if len(rest) > 0 {
		s.DefName = rest[0].Text
		for i, t := range rest[1:] {
			prev := rest[i]
			switch {
			case i == 0 && t.Text == "=":
				// "=" separates the name from the values.
			case i > 0 && prev.Text != "=" && t.Kind != TokString && prev.Line == t.Line && prev.Col+len(prev.Text) == t.Col:
				// No space between: "1e" lexes as "1" then "e".
				s.DefArgs[len(s.DefArgs)-1] += t.Text
			default:
				s.DefArgs = append(s.DefArgs, tokenText(t))
			}
		}
	}
	return s, true
}

func (p *Parser) parseKeymap(file string, line []Token) (Stmt, bool) {
	if len(line) < 2 {
		p.errorf(file, line[0].Line, "keymap requires a name")
		return Stmt{}, false
	}
	s := Stmt{Kind: StmtKeymap, Line: line[0].Line, KeymapName: line[1].Text}
	i := 2
	if i < len(line) && line[i].Text == ":" {
		i++
		if i < len(line) {
			s.KeymapParent = line[i].Text
			i++
		}
	}
	if i < len(line) && line[i].Text == "=" {
		i++
		s.DefaultSeq = p.parseActionList(file, line[i:])
	}
	return s, true
}

func (p *Parser) parseWindow(file string, line []Token) (Stmt, bool) {
	if len(line) < 2 {
		p.errorf(file, line[0].Line, "window requires a name")
		return Stmt{}, false
	}
	s := Stmt{Kind: StmtWindow, Line: line[0].Line, KeymapName: line[1].Text}
	rest := line[2:]
	var regexes []Token
	for _, t := range rest {
		if t.Kind == TokRegex {
			regexes = append(regexes, t)
		}
	}
	hasAnd := containsText(rest, "&&")
	hasOr := containsText(rest, "||")
	switch {
	case hasAnd:
		s.WindowKind = "and"
	case hasOr:
		s.WindowKind = "or"
	default:
		s.WindowKind = "single"
	}
	if len(regexes) > 0 {
		s.ClassPattern = regexes[0].Text
	}
	if len(regexes) > 1 {
		s.TitlePattern = regexes[1].Text
	}
	return s, true
}

func containsText(toks []Token, text string) bool {
	for _, t := range toks {
		if t.Text == text {
			return true
		}
	}
	return false
}

func (p *Parser) parseKey(file string, line []Token, kind StmtKind) (Stmt, bool) {
	if len(line) < 2 {
		p.errorf(file, line[0].Line, "key/event requires an LHS")
		return Stmt{}, false
	}
	s := Stmt{Kind: kind, Line: line[0].Line}
	i := 1
	eq := indexOfText(line, "=")
	if eq < 0 {
		p.errorf(file, line[0].Line, "key/event binding missing '='")
		return Stmt{}, false
	}
	lhsToks := line[i:eq]
	for _, part := range splitOnComma(lhsToks) {
		s.BindKeys = append(s.BindKeys, parseModifiedKeyTokens(part))
	}
	s.BindSeq = p.parseActionList(file, line[eq+1:])
	return s, true
}

func (p *Parser) parseMod(file string, line []Token) (Stmt, bool) {
	if len(line) < 2 {
		p.errorf(file, line[0].Line, "mod requires a group name")
		return Stmt{}, false
	}
	s := Stmt{Kind: StmtMod, Line: line[0].Line}
	i := 1
	if line[i].Text == "assign" {
		s.Kind = StmtModAssign
		i++
		if i < len(line) {
			s.ModAssignBank = line[i].Text
			i++
		}
		if i < len(line) && line[i].Text == "=" {
			i++
		}
		if i < len(line) {
			s.ModAssignKey = strings.TrimPrefix(line[i].Text, "*")
		}
		return s, true
	}

	if i < len(line) && line[i].Kind == TokPrefix && (line[i].Text == "!" || line[i].Text == "!!" || line[i].Text == "!!!") {
		s.ModMode = line[i].Text
		i++
	}
	if i < len(line) {
		s.ModGroup = line[i].Text
		i++
	}
	if i < len(line) && (line[i].Text == "+=" || line[i].Text == "-=" || line[i].Text == "=") {
		s.ModOp = line[i].Text
		i++
	} else {
		s.ModOp = "="
	}
	for ; i < len(line); i++ {
		s.ModKeys = append(s.ModKeys, line[i].Text)
	}
	return s, true
}

func (p *Parser) parseKeySeqDecl(file string, line []Token) (Stmt, bool) {
	if len(line) < 2 || !strings.HasPrefix(line[1].Text, "$") {
		p.errorf(file, line[0].Line, "keyseq requires a $name")
		return Stmt{}, false
	}
	s := Stmt{Kind: StmtKeySeqDecl, Line: line[0].Line, KeySeqName: strings.TrimPrefix(line[1].Text, "$")}
	eq := indexOfText(line, "=")
	if eq < 0 {
		p.errorf(file, line[0].Line, "keyseq declaration missing '='")
		return Stmt{}, false
	}
	s.KeySeqBody = p.parseActionList(file, line[eq+1:])
	return s, true
}

// parseActionList parses a RHS action list: a sequence of bare key refs
// (each optionally modifier-prefixed), $seqname refs, and &func(args)
// calls, optionally wrapped in parens.
func (p *Parser) parseActionList(file string, toks []Token) []RawAction {
	var out []RawAction
	i := 0
	for i < len(toks) {
		t := toks[i]
		switch {
		case t.Kind == TokLParen || t.Kind == TokRParen || t.Kind == TokComma:
			i++
		case strings.HasPrefix(t.Text, "$"):
			out = append(out, RawAction{SeqRef: strings.TrimPrefix(t.Text, "$")})
			i++
		case strings.HasPrefix(t.Text, "&"):
			call, consumed := p.parseFuncCall(toks[i:])
			out = append(out, call)
			i += consumed
		case t.Kind == TokPrefix:
			mods := []string{t.Text}
			j := i + 1
			for j < len(toks) && toks[j].Kind == TokPrefix {
				mods = append(mods, toks[j].Text)
				j++
			}
			if j < len(toks) {
				out = append(out, RawAction{KeyName: toks[j].Text, KeyMods: mods})
				j++
			}
			i = j
		case t.Kind == TokSymbol:
			out = append(out, RawAction{KeyName: t.Text})
			i++
		default:
			i++
		}
	}
	return out
}

func (p *Parser) parseFuncCall(toks []Token) (RawAction, int) {
	name := strings.TrimPrefix(toks[0].Text, "&")
	call := RawAction{FuncName: name}
	i := 1
	if i < len(toks) && toks[i].Kind == TokLParen {
		i++
		for i < len(toks) && toks[i].Kind != TokRParen {
			if toks[i].Kind == TokComma {
				i++
				continue
			}
			call.FuncArgs = append(call.FuncArgs, tokenText(toks[i]))
			i++
		}
		if i < len(toks) {
			i++ // consume ')'
		}
	}
	return call, i
}

func tokenText(t Token) string {
	switch t.Kind {
	case TokString:
		return t.Value
	case TokNumber:
		return t.Text
	default:
		return t.Text
	}
}

// parseModifiedKeyTokens splits a (prefix* name) token run into its
// modifier-prefix tokens and the trailing key name.
func parseModifiedKeyTokens(toks []Token) RawAction {
	var ra RawAction
	for _, t := range toks {
		if t.Kind == TokPrefix {
			ra.KeyMods = append(ra.KeyMods, t.Text)
			continue
		}
		ra.KeyName = t.Text
	}
	return ra
}

func joinTokenText(toks []Token) string {
	var b strings.Builder
	for _, t := range toks {
		b.WriteString(t.Text)
	}
	return b.String()
}

func indexOfText(toks []Token, text string) int {
	for i, t := range toks {
		if t.Text == text {
			return i
		}
	}
	return -1
}

func splitOnComma(toks []Token) [][]Token {
	var out [][]Token
	var cur []Token
	for _, t := range toks {
		if t.Kind == TokComma {
			out = append(out, cur)
			cur = nil
			continue
		}
		cur = append(cur, t)
	}
	if len(cur) > 0 {
		out = append(out, cur)
	}
	return out
}

func splitLines(toks []Token) [][]Token {
	var out [][]Token
	var cur []Token
	for _, t := range toks {
		if t.Kind == TokEOF {
			if len(cur) > 0 {
				out = append(out, cur)
			}
			break
		}
		if t.Kind == TokEOL {
			if len(cur) > 0 {
				out = append(out, cur)
			}
			cur = nil
			continue
		}
		cur = append(cur, t)
	}
	return out
}

func formatf(format string, args ...any) string {
	if len(args) == 0 {
		return format
	}
	return fmt.Sprintf(format, args...)
}
