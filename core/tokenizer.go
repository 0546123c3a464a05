package core

import (
	"bufio"
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strconv"
)

// TokenKind tags the variant a Token carries, matching the tagged-variant
// pull API the engine's stream executor (§4.D) consumes: Number, String,
// Name, Array, Dictionary, Boolean, Null, Operator. EOF is signaled by
// Tokenizer.Next returning io.EOF, not a Token kind.
type TokenKind int

// Token kinds.
const (
	TokenNumber TokenKind = iota
	TokenString
	TokenName
	TokenArray
	TokenDictionary
	TokenBoolean
	TokenNull
	TokenOperator
)

// Token is one item pulled from the tokenizer: either an operand object or
// an operator name.
type Token struct {
	Kind     TokenKind
	Object   Object // set for every kind except TokenOperator; a BI operator carries its raw inline-image bytes here
	Operator string // set only for TokenOperator
}

// ErrInvalidOperand is returned when an empty/invalid operand word is encountered.
var ErrInvalidOperand = errors.New("core: invalid operand")

// Tokenizer is a pull iterator over a content-stream byte source, yielding
// one Token per call to Next. It accumulates no state about operators or
// operands — that bookkeeping belongs to the stream executor (§4.D), not
// the tokenizer.
type Tokenizer struct {
	reader *bufio.Reader
}

// NewTokenizer returns a Tokenizer reading from the content stream bytes in `data`.
func NewTokenizer(data []byte) *Tokenizer {
	// Trailing newline avoids spurious EOF errors when the last byte is an operand.
	buf := bytes.NewBuffer(append(append([]byte(nil), data...), '\n'))
	return &Tokenizer{reader: bufio.NewReader(buf)}
}

// Next returns the next Token, or io.EOF when the stream is exhausted.
func (t *Tokenizer) Next() (Token, error) {
	obj, isOperator, err := t.parseObject()
	if err != nil {
		return Token{}, err
	}
	if isOperator {
		s, _ := GetStringVal(obj)
		tok := Token{Kind: TokenOperator, Operator: s}
		if s == "BI" {
			im, err := t.parseInlineImage()
			if err != nil {
				return Token{}, err
			}
			tok.Object = im
		}
		return tok, nil
	}
	return Token{Kind: kindOf(obj), Object: obj}, nil
}

// GetStringVal extracts the Go string value backing a String Object.
func GetStringVal(obj Object) (string, bool) {
	s, ok := GetStringBytes(obj)
	if !ok {
		return "", false
	}
	return string(s), true
}

func kindOf(obj Object) TokenKind {
	switch obj.(type) {
	case *Float, Float, *Integer, Integer:
		return TokenNumber
	case *String:
		return TokenString
	case *Name, Name:
		return TokenName
	case *Array:
		return TokenArray
	case *Dictionary:
		return TokenDictionary
	case Bool, *Bool:
		return TokenBoolean
	default:
		return TokenNull
	}
}

func isWhiteSpace(b byte) bool {
	return b == 0x00 || b == 0x09 || b == 0x0A || b == 0x0C || b == 0x0D || b == 0x20
}

func isDelimiter(b byte) bool {
	switch b {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

func isFloatDigit(b byte) bool {
	return (b >= '0' && b <= '9') || b == '+' || b == '-' || b == '.'
}

func isOctalDigit(b byte) bool {
	return b >= '0' && b <= '7'
}

func (t *Tokenizer) skipSpaces() error {
	for {
		bb, err := t.reader.Peek(1)
		if err != nil {
			return err
		}
		if isWhiteSpace(bb[0]) {
			t.reader.ReadByte()
			continue
		}
		return nil
	}
}

func (t *Tokenizer) skipComments() error {
	if err := t.skipSpaces(); err != nil {
		return err
	}
	for {
		bb, err := t.reader.Peek(1)
		if err != nil {
			return err
		}
		if bb[0] != '%' {
			return nil
		}
		for {
			bb, err := t.reader.Peek(1)
			if err != nil {
				return err
			}
			if bb[0] == '\r' || bb[0] == '\n' {
				break
			}
			t.reader.ReadByte()
		}
		if err := t.skipSpaces(); err != nil {
			return err
		}
	}
}

func (t *Tokenizer) parseName() (*Name, error) {
	var name []byte
	t.reader.ReadByte() // consume leading '/'
	for {
		bb, err := t.reader.Peek(1)
		if err == io.EOF {
			break
		}
		if err != nil {
			n := Name(name)
			return &n, err
		}
		if isWhiteSpace(bb[0]) || isDelimiter(bb[0]) {
			break
		}
		if bb[0] == '#' {
			hx, err := t.reader.Peek(3)
			if err != nil {
				break
			}
			t.reader.Discard(3)
			code, err := hex.DecodeString(string(hx[1:3]))
			if err != nil {
				return nil, err
			}
			name = append(name, code...)
			continue
		}
		b, _ := t.reader.ReadByte()
		name = append(name, b)
	}
	n := Name(name)
	return &n, nil
}

func (t *Tokenizer) parseNumber() (Object, error) {
	var digits []byte
	for {
		bb, err := t.reader.Peek(1)
		if err != nil {
			break
		}
		if !isFloatDigit(bb[0]) && bb[0] != 'e' && bb[0] != 'E' {
			break
		}
		b, _ := t.reader.ReadByte()
		digits = append(digits, b)
	}
	s := string(digits)
	if bytes.ContainsAny(digits, ".eE") {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("core: invalid number %q: %w", s, err)
		}
		v := Float(f)
		return &v, nil
	}
	i, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil {
			return nil, fmt.Errorf("core: invalid number %q: %w", s, err)
		}
		v := Float(f)
		return &v, nil
	}
	v := Integer(i)
	return &v, nil
}

func (t *Tokenizer) parseLiteralString() (*String, error) {
	t.reader.ReadByte() // consume '('
	var out []byte
	depth := 1
	for {
		bb, err := t.reader.Peek(1)
		if err != nil {
			return MakeStringFromBytes(out), err
		}
		switch {
		case bb[0] == '\\':
			t.reader.ReadByte()
			b, err := t.reader.ReadByte()
			if err != nil {
				return MakeStringFromBytes(out), err
			}
			if isOctalDigit(b) {
				more, _ := t.reader.Peek(2)
				numeric := []byte{b}
				for _, d := range more {
					if isOctalDigit(d) {
						numeric = append(numeric, d)
					} else {
						break
					}
				}
				t.reader.Discard(len(numeric) - 1)
				code, err := strconv.ParseUint(string(numeric), 8, 32)
				if err != nil {
					return MakeStringFromBytes(out), err
				}
				out = append(out, byte(code))
				continue
			}
			switch b {
			case 'n':
				out = append(out, '\n')
			case 'r':
				out = append(out, '\r')
			case 't':
				out = append(out, '\t')
			case 'b':
				out = append(out, '\b')
			case 'f':
				out = append(out, '\f')
			case '\r':
				// line continuation: \<CR> or \<CR><LF> is dropped entirely.
				if nb, err := t.reader.Peek(1); err == nil && nb[0] == '\n' {
					t.reader.ReadByte()
				}
			case '\n':
				// line continuation: dropped entirely.
			default:
				out = append(out, b)
			}
		case bb[0] == '(':
			depth++
			b, _ := t.reader.ReadByte()
			out = append(out, b)
		case bb[0] == ')':
			depth--
			b, _ := t.reader.ReadByte()
			if depth == 0 {
				return MakeStringFromBytes(out), nil
			}
			out = append(out, b)
		default:
			b, _ := t.reader.ReadByte()
			out = append(out, b)
		}
	}
}

func (t *Tokenizer) parseHexString() (*String, error) {
	t.reader.ReadByte() // consume '<'
	hexTable := []byte("0123456789abcdefABCDEF")
	var tmp []byte
	for {
		t.skipSpaces()
		bb, err := t.reader.Peek(1)
		if err != nil {
			return MakeString(""), err
		}
		if bb[0] == '>' {
			t.reader.ReadByte()
			break
		}
		b, _ := t.reader.ReadByte()
		if bytes.IndexByte(hexTable, b) >= 0 {
			tmp = append(tmp, b)
		}
	}
	if len(tmp)%2 == 1 {
		tmp = append(tmp, '0')
	}
	decoded, err := hex.DecodeString(string(tmp))
	if err != nil {
		return MakeString(""), err
	}
	return MakeStringFromBytes(decoded), nil
}

func (t *Tokenizer) parseArray() (*Array, error) {
	arr := MakeArray()
	t.reader.ReadByte() // consume '['
	for {
		t.skipSpaces()
		bb, err := t.reader.Peek(1)
		if err != nil {
			return arr, err
		}
		if bb[0] == ']' {
			t.reader.ReadByte()
			return arr, nil
		}
		obj, _, err := t.parseObject()
		if err != nil {
			return arr, err
		}
		arr.Append(obj)
	}
}

func (t *Tokenizer) parseDict() (*Dictionary, error) {
	dict := MakeDict()
	t.reader.Discard(2) // consume '<<'
	for {
		t.skipSpaces()
		bb, err := t.reader.Peek(2)
		if err != nil {
			return dict, err
		}
		if bb[0] == '>' && bb[1] == '>' {
			t.reader.Discard(2)
			return dict, nil
		}
		key, err := t.parseName()
		if err != nil {
			return dict, err
		}
		t.skipSpaces()
		val, _, err := t.parseObject()
		if err != nil {
			return dict, err
		}
		dict.Set(string(*key), val)
	}
}

func (t *Tokenizer) parseBool() (Object, error) {
	bb, err := t.reader.Peek(4)
	if err == nil && string(bb) == "true" {
		t.reader.Discard(4)
		v := Bool(true)
		return &v, nil
	}
	bb, err = t.reader.Peek(5)
	if err == nil && string(bb) == "false" {
		t.reader.Discard(5)
		v := Bool(false)
		return &v, nil
	}
	return nil, errors.New("core: invalid boolean literal")
}

func (t *Tokenizer) parseOperand() (string, error) {
	var out []byte
	for {
		bb, err := t.reader.Peek(1)
		if err != nil {
			return string(out), err
		}
		if isDelimiter(bb[0]) || isWhiteSpace(bb[0]) {
			break
		}
		b, _ := t.reader.ReadByte()
		out = append(out, b)
	}
	return string(out), nil
}

// parseObject returns the next operand Object, or (operand-as-String, true,
// nil) when the next token is an operator word.
func (t *Tokenizer) parseObject() (obj Object, isOperator bool, err error) {
	if err := t.skipSpaces(); err != nil {
		return nil, false, err
	}
	for {
		bb, err := t.reader.Peek(2)
		if err != nil {
			return nil, false, err
		}
		switch {
		case bb[0] == '%':
			if err := t.skipComments(); err != nil {
				return nil, false, err
			}
			continue
		case bb[0] == '/':
			n, err := t.parseName()
			return n, false, err
		case bb[0] == '(':
			s, err := t.parseLiteralString()
			return s, false, err
		case bb[0] == '<' && bb[1] != '<':
			s, err := t.parseHexString()
			return s, false, err
		case bb[0] == '<' && bb[1] == '<':
			d, err := t.parseDict()
			return d, false, err
		case bb[0] == '[':
			a, err := t.parseArray()
			return a, false, err
		case isFloatDigit(bb[0]) && bb[0] != '+' && bb[0] != '-' || (bb[0] == '-' || bb[0] == '+') && isFloatDigit(bb[1]):
			n, err := t.parseNumber()
			return n, false, err
		default:
			peek, _ := t.reader.Peek(5)
			switch {
			case len(peek) >= 4 && string(peek[:4]) == "null":
				t.reader.Discard(4)
				return MakeNull(), false, nil
			case len(peek) >= 5 && string(peek[:5]) == "false":
				b, err := t.parseBool()
				return b, false, err
			case len(peek) >= 4 && string(peek[:4]) == "true":
				b, err := t.parseBool()
				return b, false, err
			}
			word, err := t.parseOperand()
			if err != nil {
				return MakeString(word), false, err
			}
			if len(word) < 1 {
				return MakeString(word), false, ErrInvalidOperand
			}
			return MakeString(word), true, nil
		}
	}
}

// parseInlineImage consumes everything between "BI" and "EI" verbatim. Inline
// image decoding is an operator implementation, out of scope for the engine
// core (§1) — the bytes are handed, as the last operand, to whatever client
// handler registers for "BI"; "ID" and "EI" are consumed here and never
// dispatched.
func (t *Tokenizer) parseInlineImage() (Object, error) {
	var raw bytes.Buffer
	for {
		b, err := t.reader.ReadByte()
		if err != nil {
			return MakeStringFromBytes(raw.Bytes()), err
		}
		raw.WriteByte(b)
		if b == 'I' && raw.Len() >= 2 {
			data := raw.Bytes()
			if data[len(data)-2] == 'E' {
				nb, err := t.reader.Peek(1)
				if err != nil || isWhiteSpace(nb[0]) || isDelimiter(nb[0]) {
					return MakeStringFromBytes(data[:len(data)-2]), nil
				}
			}
		}
	}
}
