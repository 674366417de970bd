package fsx

import (
	"bufio"
	"strconv"
	"strings"
)

// ReadHeader parses header lines and leaves r positioned at the first byte of
// the content. Header consists of seven lines: title, "width,height",
// "left,right,top,bottom", style sheet, character style sheet, header text and
// footer text.
func ReadHeader(r *bufio.Reader, cs *Charset) (*Metadata, error) {
	return newStream(r, cs).readHeader()
}

func (s *stream) readHeader() (*Metadata, error) {
	md := &Metadata{}

	var err error
	if md.Title, err = s.readLine("title"); err != nil {
		return nil, err
	}

	size, err := s.readNumbers("page size", 2)
	if err != nil {
		return nil, err
	}
	md.Width, md.Height = size[0], size[1]

	margins, err := s.readNumbers("page margins", 4)
	if err != nil {
		return nil, err
	}
	md.MarginLeft, md.MarginRight, md.MarginTop, md.MarginBottom = margins[0], margins[1], margins[2], margins[3]

	for _, f := range []struct {
		what string
		dst  *string
	}{
		{"style sheet", &md.StyleSheet},
		{"character style sheet", &md.CharacterStyleSheet},
		{"header", &md.Header},
		{"footer", &md.Footer},
	} {
		if *f.dst, err = s.readLine(f.what); err != nil {
			return nil, err
		}
	}
	return md, nil
}

// readNumbers reads comma separated line with at least n numbers, extra
// fields are ignored.
func (s *stream) readNumbers(what string, n int) ([]float64, error) {
	line, err := s.readLine(what)
	if err != nil {
		return nil, err
	}
	fields := strings.Split(line, ",")
	if len(fields) < n {
		return nil, s.formatError("%s line %q has %d fields, expected %d", what, line, len(fields), n)
	}
	res := make([]float64, n)
	for i := range n {
		v, err := strconv.ParseFloat(strings.TrimSpace(fields[i]), 64)
		if err != nil {
			return nil, s.formatError("%s line %q, field %d is not a number: %v", what, line, i+1, err)
		}
		res[i] = v
	}
	return res, nil
}
