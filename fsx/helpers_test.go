package fsx

import (
	"bufio"
	"context"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

// header without title
const plainHeader = "\n8.5,11\n1,1,1,1\nStyles\nCharacters\n\n\n"

func esc(lead byte, op string) string {
	return string([]byte{lead}) + op
}

func styleToken(name string) string {
	return string([]byte{byte(styleBias + len(name))}) + name
}

func st(name string) string {
	return esc(escOn, opStartParagraph) + styleToken(name)
}

func sc(name string) string {
	return esc(escOn, opStartRun) + styleToken(name)
}

var (
	ignoreOn  = esc(escOn, opIgnore)
	ignoreOff = esc(escOff, opIgnore)
)

type sinkEvent struct {
	title string
	par   *Paragraph
}

type recordingSink struct {
	events []sinkEvent
	err    error
}

func (s *recordingSink) InsertTitle(text string) error {
	if s.err != nil {
		return s.err
	}
	s.events = append(s.events, sinkEvent{title: text})
	return nil
}

func (s *recordingSink) AppendParagraph(p *Paragraph) error {
	if s.err != nil {
		return s.err
	}
	s.events = append(s.events, sinkEvent{par: p})
	return nil
}

func (s *recordingSink) paragraphs() []*Paragraph {
	var res []*Paragraph
	for _, e := range s.events {
		if e.par != nil {
			res = append(res, e.par)
		}
	}
	return res
}

func testLogger(t *testing.T) *zap.Logger {
	return zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller(), zap.AddCallerSkip(1)))
}

// decodeBody decodes content part with default options and no title.
func decodeBody(t *testing.T, body string) []*Paragraph {
	t.Helper()
	return decodeBodyWith(t, body, DefaultOptions())
}

func decodeBodyWith(t *testing.T, body string, opts Options) []*Paragraph {
	t.Helper()
	sink := &recordingSink{}
	if _, err := Decode(context.Background(), strings.NewReader(plainHeader+body), sink, opts, testLogger(t)); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	return sink.paragraphs()
}

func paragraphTexts(pars []*Paragraph) []string {
	res := make([]string, 0, len(pars))
	for _, p := range pars {
		res = append(res, p.Text())
	}
	return res
}

func newTestReader(s string) *bufio.Reader {
	return bufio.NewReader(strings.NewReader(s))
}
