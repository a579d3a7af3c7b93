package lex

import (
	"strconv"

	u "github.com/araddon/gou"
	"github.com/pkg/errors"
)

var _ = u.EMPTY

// Lexer produces tokens from rasp source text on demand. It keeps a
// single character of lookahead and tracks the source range of the
// lexeme currently being read.
type Lexer struct {
	rng    Range
	src    []rune
	next   int // index into src of the peek rune
	curr   rune
	peek   rune
	currOK bool
	peekOK bool
}

// NewLexer creates a lexer over the given source text.
func NewLexer(text string) *Lexer {
	m := &Lexer{
		rng: NewRange(StartPos(), StartPos()),
		src: []rune(text),
	}
	if len(m.src) > 0 {
		m.peek = m.src[0]
		m.peekOK = true
		m.next = 1
	}
	return m
}

// Range reports the lexer's current range. After Next returns it is
// collapsed onto the end of the most recent lexeme; the parser reads its
// End to attribute ranges to expressions spanning many tokens.
func (m *Lexer) Range() Range { return m.rng }

// Next returns the next token. At end of input it returns TokenEOF
// indefinitely. Malformed lexemes are returned as TokenError or
// TokenUnknown; the lexer itself never fails.
func (m *Lexer) Next() Token {
	m.skipWhitespace()
	m.advance()
	if !m.currOK {
		m.rng.catchup()
		return Token{Type: TokenEOF, Range: m.rng}
	}

	var tok Token
	switch c := m.curr; {
	case c == ';':
		text := m.eatComment()
		tok = Token{Type: TokenComment, Range: m.rng, Text: text}
	case c == '(':
		tok = Token{Type: TokenLParen, Range: m.rng}
	case c == ')':
		tok = Token{Type: TokenRParen, Range: m.rng}
	case c == '"':
		s, err := m.eatString()
		if err != nil {
			tok = Token{Type: TokenError, Range: m.rng, Text: err.Error()}
		} else {
			tok = Token{Type: TokenString, Range: m.rng, Text: s}
		}
	case '0' <= c && c <= '9':
		n, err := m.eatNumber()
		if err != nil {
			tok = Token{Type: TokenError, Range: m.rng, Text: err.Error()}
		} else {
			tok = Token{Type: TokenNumber, Range: m.rng, Num: n}
		}
	case isIdentStart(c):
		tok = Token{Type: TokenIdentifier, Range: m.rng, Text: m.eatIdentifier()}
	default:
		tok = Token{Type: TokenUnknown, Range: m.rng, Char: c}
	}
	m.rng.catchup()
	return tok
}

// isIdentStart reports whether c may begin an identifier. The set is
// all printable ASCII minus parentheses, double quote, digits, and
// space; digits are claimed by the number lexeme first.
func isIdentStart(c rune) bool {
	switch {
	case c == '!':
		return true
	case '#' <= c && c <= '\'':
		return true
	case '*' <= c && c <= '/':
		return true
	case ':' <= c && c <= '~':
		return true
	}
	return false
}

// isIdentCont is the continuation set: as isIdentStart plus digits.
func isIdentCont(c rune) bool {
	switch {
	case c == '!':
		return true
	case '#' <= c && c <= '\'':
		return true
	case '*' <= c && c <= '~':
		return true
	}
	return false
}

func (m *Lexer) eatComment() string {
	var text []rune
	for {
		m.advance()
		if !m.currOK || m.curr == '\n' {
			break
		}
		text = append(text, m.curr)
	}
	return string(text)
}

func (m *Lexer) eatIdentifier() string {
	text := []rune{m.curr}
	for m.peekOK && isIdentCont(m.peek) {
		m.advance()
		text = append(text, m.curr)
	}
	return string(text)
}

func (m *Lexer) eatString() (string, error) {
	var text []rune
	for {
		m.advance()
		if !m.currOK {
			return "", errors.New("reached EOF before end of string")
		}
		switch m.curr {
		case '"':
			return string(text), nil
		case '\\':
			m.advance()
			if !m.currOK {
				return "", errors.New("reached EOF before end of string")
			}
			switch m.curr {
			case 'r':
				text = append(text, '\r')
			case 'n':
				text = append(text, '\n')
			case 't':
				text = append(text, '\t')
			default:
				return "", errors.Errorf("unknown escape sequence: \\%c", m.curr)
			}
		default:
			text = append(text, m.curr)
		}
	}
}

func (m *Lexer) eatNumber() (float64, error) {
	var text []rune
	decimal := false
loop:
	for {
		text = append(text, m.curr)
		switch c := m.curr; {
		case '0' <= c && c <= '9':
			if !m.peekOK {
				break loop
			}
			switch p := m.peek; {
			case '0' <= p && p <= '9', p == '.':
				// keep eating
			case p == ' ', p == '\t', p == '\r', p == '\n', p == '(', p == ')':
				break loop
			default:
				return 0, errors.Errorf("unexpected character while parsing number: %c", p)
			}
		case c == '.':
			if decimal {
				return 0, errors.New("decimal specified twice in number")
			}
			if !m.peekOK {
				return 0, errors.New("EOF reached before end of number")
			}
			if p := m.peek; '0' <= p && p <= '9' {
				decimal = true
			} else {
				return 0, errors.Errorf("unexpected character while parsing number: %c", p)
			}
		default:
			break loop
		}
		m.advance()
	}
	n, err := strconv.ParseFloat(string(text), 64)
	if err != nil {
		return 0, errors.Wrapf(err, "malformed number %q", string(text))
	}
	return n, nil
}

func (m *Lexer) skipWhitespace() {
	for m.peekOK {
		switch m.peek {
		case ' ', '\t', '\r', '\n':
			m.advance()
		default:
			m.rng.catchup()
			return
		}
	}
	m.rng.catchup()
}

// advance consumes one character: peek becomes curr and the range end
// moves over it.
func (m *Lexer) advance() {
	m.rng.endAdvance()
	m.curr, m.currOK = m.peek, m.peekOK
	if m.next < len(m.src) {
		m.peek = m.src[m.next]
		m.peekOK = true
		m.next++
	} else {
		m.peek = 0
		m.peekOK = false
	}
	if m.currOK && m.curr == '\n' {
		m.rng.endLine()
	}
}
