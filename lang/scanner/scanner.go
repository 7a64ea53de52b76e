// Package scanner tokenizes Xplice source text for the parser to consume.
package scanner

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/DrkWithT/ExpliceLang/lang/token"
)

// Error is a single scan-time diagnostic.
type Error struct {
	Pos token.Pos
	Msg string
}

func (e *Error) Error() string { return fmt.Sprintf("%s: %s", e.Pos, e.Msg) }

// ErrorList accumulates Errors encountered while scanning a file, so the
// front end reports them in a single batch.
type ErrorList []*Error

func (el *ErrorList) Add(pos token.Pos, msg string) {
	*el = append(*el, &Error{Pos: pos, Msg: msg})
}

func (el ErrorList) Err() error {
	if len(el) == 0 {
		return nil
	}
	return el
}

func (el ErrorList) Error() string {
	var b strings.Builder
	for i, e := range el {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(e.Error())
	}
	return b.String()
}

// TokenAndValue pairs a Token with its decoded payload.
type TokenAndValue struct {
	Token token.Token
	Value token.Value
}

// ScanFile tokenizes an entire source file up to and including EOF.
func ScanFile(src []byte) ([]TokenAndValue, error) {
	var (
		s   Scanner
		el  ErrorList
		out []TokenAndValue
	)
	s.Init(src, el.Add)
	for {
		var val token.Value
		tok := s.Scan(&val)
		out = append(out, TokenAndValue{Token: tok, Value: val})
		if tok == token.EOF {
			break
		}
	}
	return out, el.Err()
}

// Scanner tokenizes a single Xplice source file, one rune at a time.
type Scanner struct {
	src     []byte
	errFn   func(pos token.Pos, msg string)
	offset  int // byte offset of ch
	roffset int // byte offset after ch
	line    int
	lineOff int // byte offset of start of current line
	ch      rune
}

// Init prepares s to scan src, reporting errors via errFn.
func (s *Scanner) Init(src []byte, errFn func(token.Pos, string)) {
	s.src = src
	s.errFn = errFn
	s.offset = 0
	s.roffset = 0
	s.line = 1
	s.lineOff = 0
	s.ch = ' '
	s.next()
}

func (s *Scanner) next() {
	if s.roffset >= len(s.src) {
		s.offset = len(s.src)
		s.ch = -1
		return
	}
	s.offset = s.roffset
	if s.ch == '\n' {
		s.line++
		s.lineOff = s.offset
	}
	r, w := utf8.DecodeRune(s.src[s.roffset:])
	s.ch = r
	s.roffset += w
}

func (s *Scanner) pos() token.Pos {
	return token.MakePos(s.line, s.offset-s.lineOff+1)
}

func (s *Scanner) error(pos token.Pos, msg string) {
	if s.errFn != nil {
		s.errFn(pos, msg)
	}
}

func isLetter(ch rune) bool {
	return ch == '_' || unicode.IsLetter(ch)
}

func isDigit(ch rune) bool {
	return unicode.IsDigit(ch)
}

// Scan returns the next token and, for identifiers and literals, fills val.
func (s *Scanner) Scan(val *token.Value) token.Token {
	for s.ch == ' ' || s.ch == '\t' || s.ch == '\r' || s.ch == '\n' {
		s.next()
	}

	pos := s.pos()
	val.Pos = pos
	val.Raw = ""

	switch ch := s.ch; {
	case ch == -1:
		return token.EOF

	case isLetter(ch):
		lit := s.scanIdent()
		val.Raw = lit
		return token.LookupKw(lit)

	case isDigit(ch):
		lit, isFloat := s.scanNumber()
		val.Raw = lit
		if isFloat {
			return token.FLOAT
		}
		return token.INT

	case ch == '"':
		lit, ok := s.scanString()
		val.Raw = lit
		if !ok {
			s.error(pos, "unterminated string literal")
			return token.ILLEGAL
		}
		return token.STRING

	default:
		s.next()
		switch ch {
		case '+':
			return token.PLUS
		case '-':
			return token.MINUS
		case '*':
			return token.STAR
		case '/':
			if s.ch == '/' {
				for s.ch != '\n' && s.ch != -1 {
					s.next()
				}
				return s.Scan(val)
			}
			return token.SLASH
		case '=':
			if s.ch == '=' {
				s.next()
				return token.EQL
			}
			return token.ASSIGN
		case '!':
			if s.ch == '=' {
				s.next()
				return token.NEQ
			}
			s.error(pos, "unexpected character '!'")
			return token.ILLEGAL
		case '<':
			return token.LT
		case '>':
			return token.GT
		case '&':
			if s.ch == '&' {
				s.next()
				return token.AND
			}
			s.error(pos, "unexpected character '&'")
			return token.ILLEGAL
		case '|':
			if s.ch == '|' {
				s.next()
				return token.OR
			}
			s.error(pos, "unexpected character '|'")
			return token.ILLEGAL
		case ':':
			if s.ch == ':' {
				s.next()
				return token.DCOLON
			}
			return token.COLON
		case ',':
			return token.COMMA
		case ';':
			return token.SEMI
		case '(':
			return token.LPAREN
		case ')':
			return token.RPAREN
		case '{':
			return token.LBRACE
		case '}':
			return token.RBRACE
		default:
			s.error(pos, fmt.Sprintf("unexpected character %q", ch))
			return token.ILLEGAL
		}
	}
}

func (s *Scanner) scanIdent() string {
	start := s.offset
	for isLetter(s.ch) || isDigit(s.ch) {
		s.next()
	}
	return string(s.src[start:s.offset])
}

// scanString scans the text between a pair of '"' delimiters (there are no
// escape sequences) and returns it without the quotes. ok is false if the
// line or file ends before the closing quote.
func (s *Scanner) scanString() (string, bool) {
	s.next() // consume the opening '"'
	start := s.offset
	for s.ch != '"' {
		if s.ch == '\n' || s.ch == -1 {
			return string(s.src[start:s.offset]), false
		}
		s.next()
	}
	lit := string(s.src[start:s.offset])
	s.next() // consume the closing '"'
	return lit, true
}

// scanNumber returns the literal text and whether it is a float (contains a
// single '.' separating integer and fractional digits).
func (s *Scanner) scanNumber() (string, bool) {
	start := s.offset
	for isDigit(s.ch) {
		s.next()
	}
	isFloat := false
	if s.ch == '.' {
		isFloat = true
		s.next()
		for isDigit(s.ch) {
			s.next()
		}
	}
	return string(s.src[start:s.offset]), isFloat
}
