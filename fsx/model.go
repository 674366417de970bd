// Package fsx decodes escape-coded FSX export streams into styled paragraphs.
//
// Stream starts with a short line-oriented header followed by text bytes
// interleaved with escape sequences (lead byte 27 or 28 and a two letter
// opcode). Decoding is a single synchronous pass, paragraphs are handed to a
// Sink in stream order as soon as they are closed.
package fsx

import "strings"

const (
	// TitleStyle is paragraph style used for the document title.
	TitleStyle = "Title"

	// styleBias is subtracted from style token length byte to get name length.
	styleBias = 29
)

// Metadata is document information from the stream header.
type Metadata struct {
	Title               string  `yaml:"title"`
	Width               float64 `yaml:"width"`
	Height              float64 `yaml:"height"`
	MarginLeft          float64 `yaml:"margin_left"`
	MarginRight         float64 `yaml:"margin_right"`
	MarginTop           float64 `yaml:"margin_top"`
	MarginBottom        float64 `yaml:"margin_bottom"`
	StyleSheet          string  `yaml:"style_sheet"`
	CharacterStyleSheet string  `yaml:"character_style_sheet"`
	Header              string  `yaml:"header"`
	Footer              string  `yaml:"footer"`
}

// Run is a piece of text sharing single character style. Empty Style means
// default formatting.
type Run struct {
	Style string
	Text  string
}

// Paragraph is a styled sequence of runs.
type Paragraph struct {
	Style string
	Runs  []Run
}

// Text returns concatenated text of all runs.
func (p *Paragraph) Text() string {
	if len(p.Runs) == 1 {
		return p.Runs[0].Text
	}
	var sb strings.Builder
	for _, r := range p.Runs {
		sb.WriteString(r.Text)
	}
	return sb.String()
}

// Sink receives decoded content. Title, when present, is always inserted
// before any paragraph.
type Sink interface {
	InsertTitle(text string) error
	AppendParagraph(p *Paragraph) error
}
