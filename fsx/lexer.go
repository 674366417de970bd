package fsx

import (
	"bufio"
	"errors"
	"fmt"
	"io"
)

// Stream control bytes.
const (
	escOn  = 27 // lead byte, MI with it starts ignored region
	escOff = 28 // lead byte, MI with it ends ignored region
	lf     = 10
	cr     = 13
	space  = 32
)

// Opcodes following lead byte.
const (
	opStartParagraph = "ST"
	opStartRun       = "SC"
	opIgnore         = "MI"
)

// TokenKind enumerates lexical elements of the content part of the stream.
type TokenKind int

const (
	TokenText TokenKind = iota
	TokenBreak
	TokenStartParagraph
	TokenStartRun
	TokenIgnore
	TokenUnknown
	TokenControl

	tokenKindCount
)

func (k TokenKind) String() string {
	switch k {
	case TokenText:
		return "text"
	case TokenBreak:
		return "break"
	case TokenStartParagraph:
		return "start-paragraph"
	case TokenStartRun:
		return "start-run"
	case TokenIgnore:
		return "ignore"
	case TokenUnknown:
		return "unknown-escape"
	case TokenControl:
		return "control"
	default:
		return fmt.Sprintf("TokenKind(%d)", int(k))
	}
}

// Token is a single lexical element. Offset is position of its first byte.
type Token struct {
	Kind   TokenKind
	Offset int64
	Char   rune   // TokenText
	Style  string // TokenStartParagraph, TokenStartRun
	Ignore bool   // TokenIgnore: true when region starts
	Opcode string // escape sequences
	Byte   byte   // TokenControl
}

// Lexer splits content part of the stream into tokens.
type Lexer struct {
	s *stream
}

// NewLexer returns lexer reading from r, which must be positioned after the
// header.
func NewLexer(r *bufio.Reader, cs *Charset) *Lexer {
	return &Lexer{s: newStream(r, cs)}
}

// Offset returns number of bytes consumed so far.
func (l *Lexer) Offset() int64 {
	return l.s.off
}

// Next returns next token or io.EOF when stream is exhausted. End of stream in
// the middle of escape sequence is reported as *FormatError.
func (l *Lexer) Next() (Token, error) {
	tok := Token{Offset: l.s.off}

	b, err := l.s.readByte()
	if err != nil {
		return tok, err
	}

	switch {
	case b == escOn || b == escOff:
		return l.escape(tok, b)
	case b == lf || b == cr:
		tok.Kind = TokenBreak
		// two line terminators in a row (CRLF, LFCR, CRCR, LFLF) count once
		next, ok, err := l.s.peekByte()
		if err != nil {
			return tok, err
		}
		if ok && (next == lf || next == cr) {
			if _, err := l.s.readByte(); err != nil {
				return tok, err
			}
		}
	case b >= space:
		tok.Kind = TokenText
		tok.Char = l.s.cs.Rune(b)
	default:
		tok.Kind = TokenControl
		tok.Byte = b
	}
	return tok, nil
}

func (l *Lexer) escape(tok Token, lead byte) (Token, error) {
	op, err := l.s.readFull(2, "opcode")
	if err != nil {
		return tok, err
	}
	tok.Opcode = string(op)

	switch tok.Opcode {
	case opStartParagraph, opStartRun:
		tok.Kind = TokenStartParagraph
		if tok.Opcode == opStartRun {
			tok.Kind = TokenStartRun
		}
		if tok.Style, err = l.styleToken(); err != nil {
			return tok, err
		}
	case opIgnore:
		tok.Kind = TokenIgnore
		tok.Ignore = lead == escOn
	default:
		tok.Kind = TokenUnknown
	}
	return tok, nil
}

// styleToken reads length prefixed style name. Length byte carries fixed bias.
func (l *Lexer) styleToken() (string, error) {
	size, err := l.s.readByte()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return "", l.s.formatError("truncated escape sequence, style name length is missing")
		}
		return "", err
	}
	if size < styleBias {
		return "", &FormatError{Offset: l.s.off - 1, Reason: fmt.Sprintf("style name length byte %d is below %d", size, styleBias)}
	}
	n := int(size) - styleBias
	if n == 0 {
		return "", nil
	}
	name, err := l.s.readFull(n, "style name")
	if err != nil {
		return "", err
	}
	return l.s.cs.Decode(name), nil
}
