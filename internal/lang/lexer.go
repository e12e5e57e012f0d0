package lang

import (
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
)

// Diagnostic is one compiler-surfaced problem: a file position plus
// message. Compilation collects every Diagnostic and only a hard error
// (circular include, include nesting deeper than 32, an if block still
// open at end of file) stops it early.
type Diagnostic struct {
	File    string
	Line    int
	Col     int
	Message string
	Fatal   bool
}

func (d Diagnostic) Error() string {
	return d.File + ":" + strconv.Itoa(d.Line) + ": " + d.Message
}

// DecodeSource strips a UTF-16 BOM and transcodes to UTF-8 if present,
// otherwise returns data unchanged (it is assumed to already be UTF-8,
// the common case for .mayu files in the wild). Real pack dependency:
// golang.org/x/text/encoding/unicode.BOMOverride.
func DecodeSource(data []byte) ([]byte, error) {
	e := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	decoded, err := e.Bytes(data)
	if err != nil {
		return nil, err
	}
	return decoded, nil
}

// Lexer tokenizes one source file, line by line. Trailing-backslash line
// continuation is folded before scanning begins; a # starts a
// same-line comment that always runs to end of line.
type Lexer struct {
	file  string
	lines []string
	line  int // 0-based index into lines of the line currently scanned
	col   int // byte offset into lines[line]
	diags *[]Diagnostic
}

// NewLexer prepares a Lexer over src, joining backslash-continued lines.
func NewLexer(file string, src []byte, diags *[]Diagnostic) *Lexer {
	raw := strings.Split(strings.ReplaceAll(string(src), "\r\n", "\n"), "\n")
	joined := make([]string, 0, len(raw))
	var buf strings.Builder
	for _, l := range raw {
		if strings.HasSuffix(l, "\\") {
			buf.WriteString(strings.TrimSuffix(l, "\\"))
			continue
		}
		buf.WriteString(l)
		joined = append(joined, buf.String())
		buf.Reset()
	}
	if buf.Len() > 0 {
		joined = append(joined, buf.String())
	}
	return &Lexer{file: file, lines: joined, diags: diags}
}

// Tokens scans the entire source and returns every token, including an
// EOL at the end of each line and a final EOF.
func (lx *Lexer) Tokens() []Token {
	var out []Token
	for lx.line < len(lx.lines) {
		lx.col = 0
		lineText := lx.lines[lx.line]
		for lx.col < len(lineText) {
			r, size := utf8.DecodeRuneInString(lineText[lx.col:])
			if r == utf8.RuneError && size <= 1 {
				lx.errorfPlain(lx.line, lx.col, "invalid UTF-8 byte, resynchronizing at next line")
				break
			}
			if r == ' ' || r == '\t' {
				lx.col += size
				continue
			}
			if r == '#' {
				break // comment runs to end of line
			}

			tok, ok := lx.scanOne(lineText)
			if !ok {
				break
			}
			out = append(out, tok)
		}
		out = append(out, Token{Kind: TokEOL, Line: lx.line + 1, Col: lx.col + 1})
		lx.line++
	}
	out = append(out, Token{Kind: TokEOF, Line: lx.line + 1})
	return out
}

func (lx *Lexer) errorfPlain(line, col int, msg string) {
	*lx.diags = append(*lx.diags, Diagnostic{File: lx.file, Line: line + 1, Col: col + 1, Message: msg})
}

func (lx *Lexer) scanOne(lineText string) (Token, bool) {
	startCol := lx.col
	rest := lineText[lx.col:]

	switch {
	case rest[0] == '(':
		lx.col++
		return Token{Kind: TokLParen, Text: "(", Line: lx.line + 1, Col: startCol + 1}, true
	case rest[0] == ')':
		lx.col++
		return Token{Kind: TokRParen, Text: ")", Line: lx.line + 1, Col: startCol + 1}, true
	case rest[0] == ',':
		lx.col++
		return Token{Kind: TokComma, Text: ",", Line: lx.line + 1, Col: startCol + 1}, true
	case rest[0] == '"':
		return lx.scanString(lineText)
	case rest[0] == '/':
		return lx.scanRegexSlash(lineText)
	case strings.HasPrefix(rest, `\m{`):
		return lx.scanRegexBrace(lineText)
	case rest[0] == '&' && !strings.HasPrefix(rest, "&&"):
		return lx.scanSigil(lineText, '&')
	case rest[0] == '$':
		return lx.scanSigil(lineText, '$')
	}

	if tok, ok := lx.tryPrefix(rest); ok {
		return tok, true
	}

	if isDigit(rest[0]) {
		return lx.scanNumber(lineText)
	}

	return lx.scanSymbol(lineText)
}

// sortedPrefixes is prefixTable sorted longest-first so a longer match
// (e.g. "MMAX-") is tried before a shorter one that could also apply.
var sortedPrefixes = func() []string {
	out := append([]string(nil), prefixTable...)
	sort.Slice(out, func(i, j int) bool { return len(out[i]) > len(out[j]) })
	return out
}()

func (lx *Lexer) tryPrefix(rest string) (Token, bool) {
	for _, p := range sortedPrefixes {
		if strings.HasPrefix(rest, p) {
			startCol := lx.col
			lx.col += len(p)
			return Token{Kind: TokPrefix, Text: p, Line: lx.line + 1, Col: startCol + 1}, true
		}
	}
	return Token{}, false
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func isSymbolByte(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9') || b >= 0x80
}

// scanSigil scans a '&function-name' or '$keyseq-name' reference as one
// TokSymbol whose Text includes the leading sigil.
func (lx *Lexer) scanSigil(lineText string, sigil byte) (Token, bool) {
	startCol := lx.col
	start := lx.col
	lx.col++ // the sigil itself
	for lx.col < len(lineText) && isSymbolByte(lineText[lx.col]) {
		lx.col++
	}
	return Token{Kind: TokSymbol, Text: lineText[start:lx.col], Line: lx.line + 1, Col: startCol + 1}, true
}

func (lx *Lexer) scanSymbol(lineText string) (Token, bool) {
	startCol := lx.col
	start := lx.col
	for lx.col < len(lineText) {
		b := lineText[lx.col]
		if b == '-' {
			// A bare trailing '-' not matched by tryPrefix belongs to the
			// symbol itself (e.g. a key name containing a hyphen is rare
			// but not forbidden); stop only on whitespace/punctuation.
		}
		if !isSymbolByte(b) && b != '-' && b != '.' {
			break
		}
		r, size := utf8.DecodeRuneInString(lineText[lx.col:])
		if r == utf8.RuneError && size <= 1 {
			lx.errorfPlain(lx.line, lx.col, "invalid UTF-8 byte inside symbol")
			break
		}
		lx.col += size
	}
	if lx.col == start {
		lx.col++ // avoid infinite loop on an unrecognized byte
		lx.errorfPlain(lx.line, startCol, "unrecognized character")
		return Token{}, false
	}
	return Token{Kind: TokSymbol, Text: lineText[start:lx.col], Line: lx.line + 1, Col: startCol + 1}, true
}

func (lx *Lexer) scanNumber(lineText string) (Token, bool) {
	startCol := lx.col
	start := lx.col
	if lineText[lx.col] == '0' && lx.col+1 < len(lineText) && (lineText[lx.col+1] == 'x' || lineText[lx.col+1] == 'X') {
		lx.col += 2
		for lx.col < len(lineText) && isHexDigit(lineText[lx.col]) {
			lx.col++
		}
	} else {
		for lx.col < len(lineText) && (isDigit(lineText[lx.col]) || lineText[lx.col] == '.') {
			lx.col++
		}
	}
	text := lineText[start:lx.col]
	val, err := strconv.ParseFloat(text, 64)
	if err != nil {
		if n, e2 := strconv.ParseInt(text, 0, 64); e2 == nil {
			val = float64(n)
		} else {
			lx.errorfPlain(lx.line, startCol, "malformed number "+strconv.Quote(text))
		}
	}
	return Token{Kind: TokNumber, Text: text, Number: val, Line: lx.line + 1, Col: startCol + 1}, true
}

func isHexDigit(b byte) bool {
	return isDigit(b) || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

func (lx *Lexer) scanString(lineText string) (Token, bool) {
	startCol := lx.col
	lx.col++ // opening quote
	var out strings.Builder
	for lx.col < len(lineText) {
		c := lineText[lx.col]
		if c == '"' {
			lx.col++
			return Token{Kind: TokString, Value: out.String(), Line: lx.line + 1, Col: startCol + 1}, true
		}
		if c == '\\' {
			lx.col++
			if lx.col >= len(lineText) {
				break
			}
			decoded, consumed := decodeEscape(lineText[lx.col:], false)
			out.WriteString(decoded)
			lx.col += consumed
			continue
		}
		out.WriteByte(c)
		lx.col++
	}
	lx.errorfPlain(lx.line, startCol, "unterminated string literal")
	return Token{Kind: TokString, Value: out.String(), Line: lx.line + 1, Col: startCol + 1}, true
}

// decodeEscape decodes one C-style escape sequence starting just after
// the backslash. inRegex suppresses octal decoding of \1-\9 (those are
// back-references, not octal escapes, inside a regex literal).
func decodeEscape(s string, inRegex bool) (string, int) {
	if len(s) == 0 {
		return "", 0
	}
	switch s[0] {
	case 'n':
		return "\n", 1
	case 'r':
		return "\r", 1
	case 't':
		return "\t", 1
	case 'a':
		return "\a", 1
	case 'e':
		return "\x1b", 1
	case 'f':
		return "\f", 1
	case 'v':
		return "\v", 1
	case '\\':
		return "\\", 1
	case '\'':
		return "'", 1
	case '"':
		return "\"", 1
	case 'c':
		if len(s) >= 2 {
			return string(rune(s[1] & 0x1f)), 2
		}
		return "", 1
	case 'x':
		if len(s) >= 2 && s[1] == '{' {
			end := strings.IndexByte(s[2:], '}')
			if end >= 0 {
				hex := s[2 : 2+end]
				if n, err := strconv.ParseUint(hex, 16, 32); err == nil {
					return string(rune(n)), 3 + end
				}
			}
		}
		if len(s) >= 3 {
			if n, err := strconv.ParseUint(s[1:3], 16, 8); err == nil {
				return string(rune(n)), 3
			}
		}
		return "", 1
	default:
		if !inRegex && s[0] >= '0' && s[0] <= '7' {
			n := 0
			i := 0
			for i < 3 && i < len(s) && s[i] >= '0' && s[i] <= '7' {
				n = n*8 + int(s[i]-'0')
				i++
			}
			return string(rune(n)), i
		}
		// Back-reference (\1-\9) in regex context, or an unknown escape:
		// pass the backslash+char through verbatim for the regex engine
		// (or the diagnostic layer) to interpret.
		return "\\" + string(s[0]), 1
	}
}

func (lx *Lexer) scanRegexSlash(lineText string) (Token, bool) {
	startCol := lx.col
	lx.col++ // opening /
	var out strings.Builder
	for lx.col < len(lineText) {
		c := lineText[lx.col]
		if c == '/' {
			lx.col++
			return Token{Kind: TokRegex, Text: out.String(), Line: lx.line + 1, Col: startCol + 1}, true
		}
		if c == '\\' && lx.col+1 < len(lineText) {
			out.WriteByte(c)
			out.WriteByte(lineText[lx.col+1])
			lx.col += 2
			continue
		}
		out.WriteByte(c)
		lx.col++
	}
	lx.errorfPlain(lx.line, startCol, "unterminated regex literal")
	return Token{Kind: TokRegex, Text: out.String(), Line: lx.line + 1, Col: startCol + 1}, true
}

func (lx *Lexer) scanRegexBrace(lineText string) (Token, bool) {
	startCol := lx.col
	lx.col += 3 // \m{
	var out strings.Builder
	for lx.col < len(lineText) {
		c := lineText[lx.col]
		if c == '}' {
			lx.col++
			return Token{Kind: TokRegex, Text: out.String(), Line: lx.line + 1, Col: startCol + 1}, true
		}
		out.WriteByte(c)
		lx.col++
	}
	lx.errorfPlain(lx.line, startCol, "unterminated \\m{...} regex literal")
	return Token{Kind: TokRegex, Text: out.String(), Line: lx.line + 1, Col: startCol + 1}, true
}
