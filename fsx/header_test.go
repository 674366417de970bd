package fsx

import (
	"bufio"
	"errors"
	"io"
	"strings"
	"testing"
)

func TestReadHeader(t *testing.T) {
	input := "My Book\n8.5,11\n1,1.25,0.75,2\nOutline.sty\nChars.sty\nRunning head\nPage foot\nbody"

	r := bufio.NewReader(strings.NewReader(input))
	md, err := ReadHeader(r, nil)
	if err != nil {
		t.Fatalf("ReadHeader() error = %v", err)
	}

	want := Metadata{
		Title:               "My Book",
		Width:               8.5,
		Height:              11,
		MarginLeft:          1,
		MarginRight:         1.25,
		MarginTop:           0.75,
		MarginBottom:        2,
		StyleSheet:          "Outline.sty",
		CharacterStyleSheet: "Chars.sty",
		Header:              "Running head",
		Footer:              "Page foot",
	}
	if *md != want {
		t.Errorf("ReadHeader() = %+v, want %+v", *md, want)
	}

	rest, _ := io.ReadAll(r)
	if string(rest) != "body" {
		t.Errorf("reader positioned at %q, want %q", rest, "body")
	}
}

func TestReadHeader_CRLF(t *testing.T) {
	input := "Title\r\n612,792\r\n72,72,36,36\r\n\r\n\r\n\r\n\r\n"
	md, err := ReadHeader(bufio.NewReader(strings.NewReader(input)), nil)
	if err != nil {
		t.Fatalf("ReadHeader() error = %v", err)
	}
	if md.Title != "Title" || md.Width != 612 || md.Height != 792 || md.MarginBottom != 36 {
		t.Errorf("ReadHeader() = %+v", *md)
	}
}

func TestReadHeader_UnterminatedFooter(t *testing.T) {
	input := "t\n1,2\n1,2,3,4\na\nb\nc\nfooter"
	md, err := ReadHeader(bufio.NewReader(strings.NewReader(input)), nil)
	if err != nil {
		t.Fatalf("ReadHeader() error = %v", err)
	}
	if md.Footer != "footer" {
		t.Errorf("Footer = %q, want %q", md.Footer, "footer")
	}
}

func TestReadHeader_ExtraFieldsIgnored(t *testing.T) {
	input := "\n1,2,3\n1,2,3,4,5\n\n\n\n\n"
	md, err := ReadHeader(bufio.NewReader(strings.NewReader(input)), nil)
	if err != nil {
		t.Fatalf("ReadHeader() error = %v", err)
	}
	if md.Width != 1 || md.Height != 2 || md.MarginBottom != 4 {
		t.Errorf("ReadHeader() = %+v", *md)
	}
}

func TestReadHeader_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"missing size", "title\n"},
		{"non numeric width", "title\nwide,11\n1,1,1,1\n\n\n\n\n"},
		{"missing height", "title\n8.5\n1,1,1,1\n\n\n\n\n"},
		{"short margins", "title\n8.5,11\n1,1,1\n\n\n\n\n"},
		{"empty margin", "title\n8.5,11\n1,,1,1\n\n\n\n\n"},
		{"missing footer", "title\n8.5,11\n1,1,1,1\nsheet\nchars\nheader\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadHeader(bufio.NewReader(strings.NewReader(tt.input)), nil)
			var fe *FormatError
			if !errors.As(err, &fe) {
				t.Fatalf("ReadHeader() error = %v, want *FormatError", err)
			}
		})
	}
}

func TestReadHeader_IOError(t *testing.T) {
	boom := errors.New("boom")
	r := io.MultiReader(strings.NewReader("title\n8.5"), errReader{boom})
	_, err := ReadHeader(bufio.NewReader(r), nil)

	var ioe *IOError
	if !errors.As(err, &ioe) {
		t.Fatalf("ReadHeader() error = %v, want *IOError", err)
	}
	if !errors.Is(err, boom) {
		t.Errorf("ReadHeader() error = %v, want wrapped %v", err, boom)
	}
}

type errReader struct{ err error }

func (r errReader) Read([]byte) (int, error) { return 0, r.err }
