package front

import (
	"strconv"

	"tlog.app/go/errors"
)

// tokKind tags a lexed token. Grounded on the teacher's byte-offset
// scanner (_legacy/parse.go's Char/Keyword/Number/Ident token set,
// _legacy/front.go's skipSpaces/skipIdent), extended with the full
// operator/punctuation set a C-subset grammar needs.
type tokKind int

const (
	tokEOF tokKind = iota
	tokIdent
	tokNumber
	tokKeyword
	tokPunct
)

var keywords = map[string]bool{
	"int": true, "bool": true, "void": true,
	"if": true, "else": true, "for": true, "return": true,
	"true": true, "false": true,
}

type token struct {
	kind tokKind
	text string
	val  int64 // populated for tokNumber
	pos  int
	end  int
}

// lexer is a byte-offset scanner over the whole source, one token ahead
// (peek) of the parser, matching the teacher's st/i-returning token()
// shape but holding its own cursor rather than being re-entered with an
// explicit position each call.
type lexer struct {
	src []byte
	pos int
}

func newLexer(src []byte) *lexer {
	return &lexer{src: src}
}

func (l *lexer) next() (token, error) {
	l.skipSpacesAndComments()
	st := l.pos

	if l.pos >= len(l.src) {
		return token{kind: tokEOF, pos: st, end: st}, nil
	}

	c := l.src[l.pos]

	switch {
	case isIdentStart(c):
		i := l.pos + 1
		for i < len(l.src) && isIdentCont(l.src[i]) {
			i++
		}
		text := string(l.src[st:i])
		l.pos = i
		kind := tokIdent
		if keywords[text] {
			kind = tokKeyword
		}
		return token{kind: kind, text: text, pos: st, end: i}, nil

	case isDigit(c):
		i := l.pos + 1
		for i < len(l.src) && isDigit(l.src[i]) {
			i++
		}
		text := string(l.src[st:i])
		val, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return token{}, errors.Wrap(err, "at pos %d", st)
		}
		l.pos = i
		return token{kind: tokNumber, text: text, val: val, pos: st, end: i}, nil

	default:
		return l.lexPunct()
	}
}

// lexPunct scans one operator/punctuation token, preferring the longest
// match (e.g. "==" over "=", "&&" over "&").
func (l *lexer) lexPunct() (token, error) {
	st := l.pos
	two := ""
	if l.pos+1 < len(l.src) {
		two = string(l.src[l.pos : l.pos+2])
	}

	switch two {
	case "==", "!=", "<=", ">=", "&&", "||":
		l.pos += 2
		return token{kind: tokPunct, text: two, pos: st, end: l.pos}, nil
	}

	c := l.src[l.pos]
	switch c {
	case '+', '-', '*', '/', '%', '<', '>', '=', '!', '~', '&', '|', '^',
		'(', ')', '{', '}', ';', ',':
		l.pos++
		return token{kind: tokPunct, text: string(c), pos: st, end: l.pos}, nil
	}

	return token{}, errors.New("unexpected character %q at pos %d", c, st)
}

func (l *lexer) skipSpacesAndComments() {
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			l.pos++
		case c == '/' && l.pos+1 < len(l.src) && l.src[l.pos+1] == '/':
			for l.pos < len(l.src) && l.src[l.pos] != '\n' {
				l.pos++
			}
		default:
			return
		}
	}
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentCont(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
