/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

package token

import (
	"bufio"
	"bytes"
	"encoding/hex"
	"strconv"

	"github.com/pdfredact/pdfredact/common"
)

// Lexer turns a content-stream byte slice into a sequence of Tokens. It
// never returns an error: unrecognized or malformed bytes are skipped one
// at a time so the lexer always makes forward progress, matching the
// failure model the redaction core requires (a corrupt content stream
// degrades to a best-effort token sequence instead of aborting the whole
// page).
type Lexer struct {
	reader *bufio.Reader
}

// NewLexer returns a Lexer over `content`.
func NewLexer(content []byte) *Lexer {
	buf := bytes.NewBuffer(append(append([]byte(nil), content...), '\n'))
	return &Lexer{reader: bufio.NewReader(buf)}
}

// Next returns the next Token in the stream and true, or the zero Token and
// false at end of input.
func (lx *Lexer) Next() (Token, bool) {
	for {
		lx.skipSpacesAndComments()
		bb, err := lx.reader.Peek(1)
		if err != nil {
			return Token{}, false
		}
		switch {
		case bb[0] == '/':
			return lx.readName(), true
		case bb[0] == '(':
			return lx.readLiteralString(), true
		case bb[0] == '<':
			two, _ := lx.reader.Peek(2)
			if len(two) == 2 && two[1] == '<' {
				// A bare dictionary cannot appear directly as a content
				// stream operand (only inside BI...ID inline image
				// dictionaries, handled by the caller before tokens are
				// requested for that span); skip it defensively rather
				// than mis-lexing it as a hex string.
				lx.skipDict()
				continue
			}
			return lx.readHexString(), true
		case bb[0] == '[':
			return lx.readArray(), true
		case isFloatDigit(bb[0]):
			if tok, ok := lx.readNumber(); ok {
				return tok, true
			}
			lx.reader.ReadByte()
			continue
		case bb[0] == '-' || bb[0] == '+' || bb[0] == '.':
			ahead, _ := lx.reader.Peek(3)
			if (len(ahead) >= 2 && isFloatDigit(ahead[1])) ||
				(len(ahead) == 3 && ahead[1] == '.' && isFloatDigit(ahead[2])) {
				if tok, ok := lx.readNumber(); ok {
					return tok, true
				}
			}
			lx.reader.ReadByte()
			continue
		case bb[0] == ']' || bb[0] == ')' || bb[0] == '>':
			// Stray closing delimiter with no matching opener: skip it so
			// the lexer keeps making progress on malformed input.
			lx.reader.ReadByte()
			continue
		default:
			word := lx.readWord()
			if word == "" {
				lx.reader.ReadByte()
				continue
			}
			return Operator(word), true
		}
	}
}

// ReadInlineImageRaw reads and returns the raw bytes of an inline image's
// parameter dictionary and data, from just after a "BI" operator up to and
// including the terminating "EI" operator. The caller is responsible for
// having already consumed the "BI" token. Redaction treats an inline image
// as an opaque unit it can only keep or drop whole, so this avoids
// decoding the per-entry dictionary the way a full PDF object parser would.
func (lx *Lexer) ReadInlineImageRaw() []byte {
	var out []byte
	for {
		b, err := lx.reader.ReadByte()
		if err != nil {
			return out
		}
		out = append(out, b)
		if len(out) >= 2 && out[len(out)-2] == 'E' && out[len(out)-1] == 'I' {
			n := len(out)
			precededByWS := n == 2 || isWhitespace(out[n-3])
			next, _ := lx.reader.Peek(1)
			followedByWS := len(next) == 0 || isWhitespace(next[0]) || isDelimiter(next[0])
			if precededByWS && followedByWS {
				return out
			}
		}
	}
}

func (lx *Lexer) skipSpacesAndComments() {
	for {
		bb, err := lx.reader.Peek(1)
		if err != nil {
			return
		}
		if isWhitespace(bb[0]) {
			lx.reader.ReadByte()
			continue
		}
		if bb[0] == '%' {
			for {
				b, err := lx.reader.ReadByte()
				if err != nil || b == '\n' || b == '\r' {
					break
				}
			}
			continue
		}
		return
	}
}

func (lx *Lexer) skipDict() {
	lx.reader.ReadByte()
	lx.reader.ReadByte()
	depth := 1
	for depth > 0 {
		b, err := lx.reader.ReadByte()
		if err != nil {
			return
		}
		if b == '<' {
			if next, _ := lx.reader.Peek(1); len(next) == 1 && next[0] == '<' {
				lx.reader.ReadByte()
				depth++
			}
		} else if b == '>' {
			if next, _ := lx.reader.Peek(1); len(next) == 1 && next[0] == '>' {
				lx.reader.ReadByte()
				depth--
			}
		}
	}
}

// readName parses a /Name token, resolving #xx hex escapes as PDF requires.
func (lx *Lexer) readName() Token {
	lx.reader.ReadByte() // consume '/'
	var name []byte
	for {
		bb, err := lx.reader.Peek(1)
		if err != nil {
			break
		}
		b := bb[0]
		if isWhitespace(b) || isDelimiter(b) {
			break
		}
		if b == '#' {
			esc, err := lx.reader.Peek(3)
			if err == nil && len(esc) == 3 {
				if code, err := hex.DecodeString(string(esc[1:3])); err == nil {
					lx.reader.Discard(3)
					name = append(name, code...)
					continue
				}
			}
		}
		lx.reader.ReadByte()
		name = append(name, b)
	}
	return Name(string(name))
}

// readLiteralString parses a (...) string, decoding octal and named escapes.
func (lx *Lexer) readLiteralString() Token {
	lx.reader.ReadByte() // consume '('
	var out []byte
	depth := 1
	for {
		bb, err := lx.reader.Peek(1)
		if err != nil {
			break
		}
		b := bb[0]
		if b == '\\' {
			lx.reader.ReadByte()
			eb, err := lx.reader.ReadByte()
			if err != nil {
				break
			}
			if isOctalDigit(eb) {
				rest, _ := lx.reader.Peek(2)
				digits := []byte{eb}
				for _, d := range rest {
					if isOctalDigit(d) {
						digits = append(digits, d)
					} else {
						break
					}
				}
				lx.reader.Discard(len(digits) - 1)
				if code, err := strconv.ParseUint(string(digits), 8, 32); err == nil {
					out = append(out, byte(code))
				}
				continue
			}
			switch eb {
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
			case '(':
				out = append(out, '(')
			case ')':
				out = append(out, ')')
			case '\\':
				out = append(out, '\\')
			case '\n':
				// line continuation, emits nothing
			case '\r':
				if next, _ := lx.reader.Peek(1); len(next) == 1 && next[0] == '\n' {
					lx.reader.ReadByte()
				}
			default:
				out = append(out, eb)
			}
			continue
		}
		if b == '(' {
			depth++
		} else if b == ')' {
			depth--
			if depth == 0 {
				lx.reader.ReadByte()
				break
			}
		}
		lx.reader.ReadByte()
		out = append(out, b)
	}
	return LiteralString(string(out))
}

// readHexString parses a <...> hex string, padding an odd trailing digit
// with '0' as PDF 32000-1:2008 7.3.4.3 requires.
func (lx *Lexer) readHexString() Token {
	lx.reader.ReadByte() // consume '<'
	var digits []byte
	for {
		bb, err := lx.reader.Peek(1)
		if err != nil {
			break
		}
		if bb[0] == '>' {
			lx.reader.ReadByte()
			break
		}
		b, _ := lx.reader.ReadByte()
		if isHexDigit(b) {
			digits = append(digits, b)
		}
	}
	if len(digits)%2 == 1 {
		digits = append(digits, '0')
	}
	decoded, _ := hex.DecodeString(string(digits))
	return HexString(string(decoded))
}

// readArray parses a [...] array, recursing via Next for its elements.
func (lx *Lexer) readArray() Token {
	lx.reader.ReadByte() // consume '['
	var items []Token
	for {
		lx.skipSpacesAndComments()
		bb, err := lx.reader.Peek(1)
		if err != nil {
			break
		}
		if bb[0] == ']' {
			lx.reader.ReadByte()
			break
		}
		tok, ok := lx.Next()
		if !ok {
			break
		}
		items = append(items, tok)
	}
	return Array(items)
}

// readNumber parses an integer or real number, including the non-conforming
// exponential notation real-world generators sometimes emit.
func (lx *Lexer) readNumber() (Token, bool) {
	var buf []byte
	seenDigit := false
	for {
		bb, err := lx.reader.Peek(1)
		if err != nil {
			break
		}
		b := bb[0]
		switch {
		case b >= '0' && b <= '9':
			seenDigit = true
			buf = append(buf, b)
			lx.reader.ReadByte()
		case b == '.' || b == '-' || b == '+':
			buf = append(buf, b)
			lx.reader.ReadByte()
		case b == 'e' || b == 'E':
			buf = append(buf, b)
			lx.reader.ReadByte()
		default:
			goto done
		}
	}
done:
	if !seenDigit {
		return Token{}, false
	}
	v, err := strconv.ParseFloat(string(buf), 64)
	if err != nil {
		common.Log.Debug("token: invalid number %q", buf)
		return Token{}, false
	}
	return Num(v), true
}

// readWord reads a bare keyword (an operator, or the literal true/false/
// null tokens, which a content stream may legally contain as array/dict
// elements). All of them become Operator tokens: inside an array they stay
// array elements and are written back verbatim, while at the top level the
// dispatcher handles them as operators.
func (lx *Lexer) readWord() string {
	var buf []byte
	for {
		bb, err := lx.reader.Peek(1)
		if err != nil {
			break
		}
		if isWhitespace(bb[0]) || isDelimiter(bb[0]) {
			break
		}
		b, _ := lx.reader.ReadByte()
		buf = append(buf, b)
	}
	return string(buf)
}

func isWhitespace(b byte) bool {
	switch b {
	case 0x00, 0x09, 0x0A, 0x0C, 0x0D, 0x20:
		return true
	}
	return false
}

func isDelimiter(b byte) bool {
	switch b {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

func isFloatDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func isOctalDigit(b byte) bool {
	return b >= '0' && b <= '7'
}

func isHexDigit(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}
