package step

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ParamKind identifies the kind of an entity parameter.
type ParamKind uint8

const (
	KindUnset   ParamKind = iota // $
	KindDerived                  // *
	KindRef                      // #123
	KindString                   // 'text'
	KindNumber                   // 12 or 1.5E-3
	KindEnum                     // .T.
	KindList                     // (a,b)
	KindTyped                    // LENGTH_MEASURE(1.)
)

// Param is a single entity parameter.
type Param struct {
	Kind ParamKind
	Ref  int
	Str  string // string contents, enum name or typed parameter name
	Num  float64
	List []Param // list items or the arguments of a typed parameter
}

// Entity is an instance of the data section. Complex instances have an
// empty Name and one Part per partial entity.
type Entity struct {
	ID     int
	Name   string
	Params []Param
	Parts  []Entity
}

// File is a parsed ISO 10303-21 exchange structure.
type File struct {
	Header   []Entity
	Entities map[int]*Entity
	// Order lists entity ids in file order.
	Order []int
}

// Parse reads a Part 21 exchange structure.
func Parse(r io.Reader) (*File, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	p := &parser{lx: lexer{src: b, line: 1}}
	p.next()
	return p.file()
}

type tokKind uint8

const (
	tokEOF tokKind = iota
	tokKeyword
	tokInstance
	tokString
	tokNumber
	tokEnum
	tokDollar
	tokStar
	tokLParen
	tokRParen
	tokComma
	tokEq
	tokSemi
)

type token struct {
	kind tokKind
	text string
	line int
}

type lexer struct {
	src  []byte
	pos  int
	line int
}

var punctuation = map[byte]tokKind{'$': tokDollar, '*': tokStar, '(': tokLParen, ')': tokRParen, ',': tokComma, '=': tokEq, ';': tokSemi}

func isAlpha(c byte) bool { return c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z' || c == '_' }
func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func (lx *lexer) skip() error {
	for lx.pos < len(lx.src) {
		c := lx.src[lx.pos]
		switch {
		case c == '\n':
			lx.line++
			lx.pos++
		case c == ' ' || c == '\t' || c == '\r':
			lx.pos++
		case c == '/' && lx.pos+1 < len(lx.src) && lx.src[lx.pos+1] == '*':
			end := bytes.Index(lx.src[lx.pos+2:], []byte("*/"))
			if end < 0 {
				return &SyntaxError{Line: lx.line, Msg: "unterminated comment"}
			}
			comment := lx.src[lx.pos : lx.pos+2+end+2]
			lx.line += bytes.Count(comment, []byte("\n"))
			lx.pos += len(comment)
		default:
			return nil
		}
	}
	return nil
}

func (lx *lexer) token() (token, error) {
	if err := lx.skip(); err != nil {
		return token{}, err
	}
	if lx.pos >= len(lx.src) {
		return token{kind: tokEOF, line: lx.line}, nil
	}
	start, line := lx.pos, lx.line
	c := lx.src[lx.pos]
	if k, ok := punctuation[c]; ok {
		lx.pos++
		return token{kind: k, text: string(c), line: line}, nil
	}
	switch {
	case isAlpha(c) || c == '!':
		lx.pos++
		for lx.pos < len(lx.src) && (isAlpha(lx.src[lx.pos]) || isDigit(lx.src[lx.pos]) || lx.src[lx.pos] == '-') {
			lx.pos++
		}
		return token{kind: tokKeyword, text: strings.ToUpper(string(lx.src[start:lx.pos])), line: line}, nil

	case c == '#':
		lx.pos++
		for lx.pos < len(lx.src) && isDigit(lx.src[lx.pos]) {
			lx.pos++
		}
		if lx.pos == start+1 {
			return token{}, &SyntaxError{Line: line, Msg: "instance name without digits"}
		}
		return token{kind: tokInstance, text: string(lx.src[start+1 : lx.pos]), line: line}, nil

	case c == '\'':
		var sb strings.Builder
		lx.pos++
		for {
			if lx.pos >= len(lx.src) {
				return token{}, &SyntaxError{Line: line, Msg: "unterminated string"}
			}
			ch := lx.src[lx.pos]
			lx.pos++
			if ch == '\n' {
				lx.line++
			}
			if ch == '\'' {
				if lx.pos < len(lx.src) && lx.src[lx.pos] == '\'' {
					sb.WriteByte('\'')
					lx.pos++
					continue
				}
				break
			}
			sb.WriteByte(ch)
		}
		return token{kind: tokString, text: sb.String(), line: line}, nil

	case c == '"':
		// Binary values are kept as their hexadecimal text.
		end := bytes.IndexByte(lx.src[lx.pos+1:], '"')
		if end < 0 {
			return token{}, &SyntaxError{Line: line, Msg: "unterminated binary"}
		}
		lx.pos += end + 2
		return token{kind: tokString, text: string(lx.src[start+1 : lx.pos-1]), line: line}, nil

	case c == '.':
		lx.pos++
		for lx.pos < len(lx.src) && (isAlpha(lx.src[lx.pos]) || isDigit(lx.src[lx.pos])) {
			lx.pos++
		}
		if lx.pos >= len(lx.src) || lx.src[lx.pos] != '.' {
			return token{}, &SyntaxError{Line: line, Msg: "unterminated enumeration"}
		}
		lx.pos++
		return token{kind: tokEnum, text: strings.ToUpper(string(lx.src[start+1 : lx.pos-1])), line: line}, nil

	case isDigit(c) || c == '-' || c == '+':
		lx.pos++
		for lx.pos < len(lx.src) {
			ch := lx.src[lx.pos]
			if isDigit(ch) || ch == '.' || ch == 'E' || ch == 'e' ||
				((ch == '-' || ch == '+') && (lx.src[lx.pos-1] == 'E' || lx.src[lx.pos-1] == 'e')) {
				lx.pos++
				continue
			}
			break
		}
		return token{kind: tokNumber, text: string(lx.src[start:lx.pos]), line: line}, nil
	}
	return token{}, &SyntaxError{Line: line, Msg: fmt.Sprintf("unexpected character %q", c)}
}

type parser struct {
	lx  lexer
	tok token
	err error
}

func (p *parser) next() {
	if p.err != nil {
		return
	}
	p.tok, p.err = p.lx.token()
}

func (p *parser) fail(format string, args ...any) {
	if p.err == nil {
		p.err = &SyntaxError{Line: p.tok.line, Msg: fmt.Sprintf(format, args...)}
	}
}

func (p *parser) expect(k tokKind, text string) {
	if p.err != nil {
		return
	}
	if p.tok.kind != k || (text != "" && p.tok.text != text) {
		want := text
		if want == "" {
			want = fmt.Sprintf("token kind %d", k)
		}
		p.fail("expected %s, got %q", want, p.tok.text)
		return
	}
	p.next()
}

func (p *parser) file() (*File, error) {
	f := &File{Entities: make(map[int]*Entity)}
	p.expect(tokKeyword, "ISO-10303-21")
	p.expect(tokSemi, "")
	p.expect(tokKeyword, "HEADER")
	p.expect(tokSemi, "")
	for p.err == nil && !(p.tok.kind == tokKeyword && p.tok.text == "ENDSEC") {
		e := p.simple()
		p.expect(tokSemi, "")
		f.Header = append(f.Header, e)
	}
	p.expect(tokKeyword, "ENDSEC")
	p.expect(tokSemi, "")
	for p.err == nil && p.tok.kind == tokKeyword && p.tok.text == "DATA" {
		p.next()
		if p.tok.kind == tokLParen {
			p.params() // section name and schema
		}
		p.expect(tokSemi, "")
		for p.err == nil && p.tok.kind == tokInstance {
			e := p.instance()
			if p.err != nil {
				break
			}
			if _, dup := f.Entities[e.ID]; dup {
				p.fail("duplicate instance #%d", e.ID)
				break
			}
			f.Entities[e.ID] = &e
			f.Order = append(f.Order, e.ID)
		}
		p.expect(tokKeyword, "ENDSEC")
		p.expect(tokSemi, "")
	}
	p.expect(tokKeyword, "END-ISO-10303-21")
	p.expect(tokSemi, "")
	if p.err != nil {
		return nil, p.err
	}
	return f, nil
}

func (p *parser) instance() Entity {
	id, err := strconv.Atoi(p.tok.text)
	if err != nil {
		p.fail("bad instance name #%s", p.tok.text)
	}
	p.next()
	p.expect(tokEq, "")
	var e Entity
	if p.tok.kind == tokLParen {
		p.next()
		for p.err == nil && p.tok.kind == tokKeyword {
			e.Parts = append(e.Parts, p.simple())
		}
		p.expect(tokRParen, "")
	} else {
		e = p.simple()
	}
	p.expect(tokSemi, "")
	e.ID = id
	return e
}

func (p *parser) simple() Entity {
	if p.tok.kind != tokKeyword {
		p.fail("expected entity name, got %q", p.tok.text)
		return Entity{}
	}
	e := Entity{Name: p.tok.text}
	p.next()
	e.Params = p.params()
	return e
}

// params parses a parenthesized parameter list.
func (p *parser) params() []Param {
	p.expect(tokLParen, "")
	var list []Param
	if p.tok.kind == tokRParen {
		p.next()
		return list
	}
	for p.err == nil {
		list = append(list, p.param())
		if p.tok.kind == tokComma {
			p.next()
			continue
		}
		p.expect(tokRParen, "")
		break
	}
	return list
}

func (p *parser) param() Param {
	t := p.tok
	switch t.kind {
	case tokDollar:
		p.next()
		return Param{Kind: KindUnset}
	case tokStar:
		p.next()
		return Param{Kind: KindDerived}
	case tokInstance:
		p.next()
		id, err := strconv.Atoi(t.text)
		if err != nil {
			p.fail("bad reference #%s", t.text)
		}
		return Param{Kind: KindRef, Ref: id}
	case tokString:
		p.next()
		return Param{Kind: KindString, Str: t.text}
	case tokEnum:
		p.next()
		return Param{Kind: KindEnum, Str: t.text}
	case tokNumber:
		p.next()
		v, err := strconv.ParseFloat(t.text, 64)
		if err != nil {
			p.fail("bad number %q", t.text)
		}
		return Param{Kind: KindNumber, Num: v}
	case tokLParen:
		return Param{Kind: KindList, List: p.params()}
	case tokKeyword:
		p.next()
		return Param{Kind: KindTyped, Str: t.text, List: p.params()}
	}
	p.fail("unexpected %q in parameter list", t.text)
	return Param{}
}
