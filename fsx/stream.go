package fsx

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
)

// stream tracks position in the input so errors could point to the offending
// byte.
type stream struct {
	r   *bufio.Reader
	off int64
	cs  *Charset
}

func newStream(r *bufio.Reader, cs *Charset) *stream {
	if cs == nil {
		cs, _ = LookupCharset("")
	}
	return &stream{r: r, cs: cs}
}

func (s *stream) formatError(format string, args ...any) error {
	return &FormatError{Offset: s.off, Reason: fmt.Sprintf(format, args...)}
}

// readLine returns next header line without terminator. Last line may be
// unterminated, absent line is format error.
func (s *stream) readLine(what string) (string, error) {
	data, err := s.r.ReadBytes('\n')
	s.off += int64(len(data))
	if err != nil {
		if !errors.Is(err, io.EOF) {
			return "", &IOError{Op: "read", Err: err}
		}
		if len(data) == 0 {
			return "", s.formatError("header line with %s is missing", what)
		}
	}
	data = bytes.TrimSuffix(data, []byte{'\n'})
	data = bytes.TrimSuffix(data, []byte{'\r'})
	return s.cs.Decode(data), nil
}

// readByte returns io.EOF unwrapped at the end of stream.
func (s *stream) readByte() (byte, error) {
	b, err := s.r.ReadByte()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return 0, io.EOF
		}
		return 0, &IOError{Op: "read", Err: err}
	}
	s.off++
	return b, nil
}

// peekByte reports false at the end of stream.
func (s *stream) peekByte() (byte, bool, error) {
	data, err := s.r.Peek(1)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return 0, false, nil
		}
		return 0, false, &IOError{Op: "read", Err: err}
	}
	return data[0], true, nil
}

// readFull reads exactly n bytes of an escape sequence, running out of data is
// format error.
func (s *stream) readFull(n int, what string) ([]byte, error) {
	buf := make([]byte, n)
	got, err := io.ReadFull(s.r, buf)
	s.off += int64(got)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, s.formatError("truncated escape sequence, %s needs %d bytes, got %d", what, n, got)
		}
		return nil, &IOError{Op: "read", Err: err}
	}
	return buf, nil
}
