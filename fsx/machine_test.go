package fsx

import (
	"slices"
	"testing"
)

func textTok(r rune) Token      { return Token{Kind: TokenText, Char: r} }
func parTok(style string) Token { return Token{Kind: TokenStartParagraph, Style: style} }
func runTok(style string) Token { return Token{Kind: TokenStartRun, Style: style} }
func ignoreTok(on bool) Token   { return Token{Kind: TokenIgnore, Ignore: on} }
func breakTok() Token           { return Token{Kind: TokenBreak} }
func textToks(s string) (res []Token) {
	for _, r := range s {
		res = append(res, textTok(r))
	}
	return res
}

func TestMachine_Transitions(t *testing.T) {
	tests := []struct {
		name    string
		setup   []Token
		tok     Token
		want    Phase
		emitted int
	}{
		{"idle text", nil, textTok('a'), PhaseParagraphAndRunOpen, 0},
		{"idle break", nil, breakTok(), PhaseIdle, 0},
		{"idle start paragraph", nil, parTok("Body"), PhaseParagraphOpen, 0},
		{"idle start run", nil, runTok("Emphasis"), PhaseParagraphAndRunOpen, 0},
		{"idle ignore", nil, ignoreTok(true), PhaseIdle, 0},
		{"idle unknown", nil, Token{Kind: TokenUnknown, Opcode: "XX"}, PhaseIdle, 0},
		{"paragraph text", []Token{parTok("Body")}, textTok('a'), PhaseParagraphAndRunOpen, 0},
		{"paragraph start run", []Token{parTok("Body")}, runTok("Emphasis"), PhaseParagraphAndRunOpen, 0},
		{"paragraph break", []Token{parTok("Body")}, breakTok(), PhaseParagraphAndRunOpen, 0},
		{"paragraph start paragraph", []Token{parTok("Body")}, parTok("Body"), PhaseParagraphOpen, 0},
		{"paragraph control", []Token{parTok("Body")}, Token{Kind: TokenControl, Byte: 9}, PhaseParagraphOpen, 0},
		{"run text", []Token{parTok("Body"), textTok('a')}, textTok('b'), PhaseParagraphAndRunOpen, 0},
		{"run start run", []Token{parTok("Body"), textTok('a')}, runTok("Emphasis"), PhaseParagraphAndRunOpen, 0},
		{"run break", []Token{parTok("Body"), textTok('a')}, breakTok(), PhaseParagraphAndRunOpen, 1},
		{"run start paragraph", []Token{parTok("Body"), textTok('a')}, parTok("Body"), PhaseParagraphOpen, 1},
		{"out of range kind", nil, Token{Kind: tokenKindCount}, PhaseIdle, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMachine(DefaultOptions())
			for _, tok := range tt.setup {
				m.Step(tok)
			}
			out := m.Step(tt.tok)
			if got := m.Phase(); got != tt.want {
				t.Errorf("Phase() = %v, want %v", got, tt.want)
			}
			if len(out) != tt.emitted {
				t.Errorf("emitted %d paragraphs, want %d", len(out), tt.emitted)
			}
		})
	}
}

func TestMachine_TrimRule(t *testing.T) {
	tests := []struct {
		style       string
		wantText    string
		wantPending string
	}{
		{"Quote-ReadThis", "to be", " "},
		{"Citation-ReadThis", "to be", " "},
		{"Body", "to be ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.style, func(t *testing.T) {
			m := NewMachine(DefaultOptions())
			m.Step(parTok("Quote"))
			m.Step(runTok(tt.style))
			for _, tok := range textToks("to be ") {
				m.Step(tok)
			}
			m.Step(runTok("Next"))

			if got := m.Pending(); got != tt.wantPending {
				t.Errorf("Pending() = %q, want %q", got, tt.wantPending)
			}
			if n := len(m.par.Runs); n != 1 {
				t.Fatalf("paragraph has %d runs, want 1", n)
			}
			if got := m.par.Runs[0]; got.Style != tt.style || got.Text != tt.wantText {
				t.Errorf("flushed run = %+v, want style %q text %q", got, tt.style, tt.wantText)
			}
		})
	}
}

func TestMachine_TrimRuleEmptyPending(t *testing.T) {
	m := NewMachine(DefaultOptions())
	m.Step(parTok("Quote"))
	m.Step(runTok("Quote-ReadThis"))
	m.Step(runTok("Body"))

	if got := m.Pending(); got != "" {
		t.Errorf("Pending() = %q, want empty", got)
	}
	if got := m.Phase(); got != PhaseParagraphAndRunOpen {
		t.Errorf("Phase() = %v, want %v", got, PhaseParagraphAndRunOpen)
	}
}

func TestMachine_BreakKeepsStyles(t *testing.T) {
	m := NewMachine(DefaultOptions())
	for _, tok := range append([]Token{parTok("Quote"), runTok("Quote-ReadThis")}, textToks("line one")...) {
		m.Step(tok)
	}
	out := m.Step(breakTok())
	if len(out) != 1 || out[0].Text() != "line one" {
		t.Fatalf("break emitted %v, want single paragraph", paragraphTexts(out))
	}
	if m.par.Style != "Quote" {
		t.Errorf("continuation paragraph style = %q, want %q", m.par.Style, "Quote")
	}
	if m.run == nil || m.run.Style != "Quote-ReadThis" {
		t.Errorf("continuation run = %+v, want style %q", m.run, "Quote-ReadThis")
	}
}

func TestMachine_BreakVerbatim(t *testing.T) {
	m := NewMachine(DefaultOptions())
	for _, tok := range append([]Token{parTok("Quote"), runTok("Quote-ReadThis")}, textToks("ends with space ")...) {
		m.Step(tok)
	}
	out := m.Step(breakTok())
	if len(out) != 1 || out[0].Text() != "ends with space " {
		t.Errorf("break emitted %q, want trailing space preserved", paragraphTexts(out))
	}
	if got := m.Pending(); got != "" {
		t.Errorf("Pending() = %q after break, want empty", got)
	}
}

func TestMachine_Filter(t *testing.T) {
	tests := []struct {
		name  string
		toks  []Token
		texts []string
	}{
		{"plain", append([]Token{parTok("Body")}, textToks("text")...), []string{"text"}},
		{"toc heading", append([]Token{parTok("TOC Heading")}, textToks("Contents")...), nil},
		{"modify date", append([]Token{parTok("Modify Date")}, textToks("2020-01-01")...), nil},
		{"empty", []Token{parTok("Body"), runTok("Emphasis")}, nil},
		{"ignored", append([]Token{ignoreTok(true), parTok("Body")}, textToks("toc entry")...), nil},
		{"empty region mid paragraph", append(append(append([]Token{parTok("Body")}, textToks("Before")...), ignoreTok(true), ignoreTok(false)), textToks("After")...), []string{"BeforeAfter"}},
		{"region closed before text", append([]Token{ignoreTok(true), parTok("Body"), ignoreTok(false)}, textToks("Visible")...), []string{"Visible"}},
		{"text inside region mid paragraph", append(append(append(append([]Token{parTok("Body")}, textToks("a")...), ignoreTok(true)), textToks("hidden")...), ignoreTok(false)), nil},
		{"after ignored region", append([]Token{ignoreTok(true), ignoreTok(false), parTok("Body")}, textToks("kept")...), []string{"kept"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMachine(DefaultOptions())
			var out []*Paragraph
			for _, tok := range tt.toks {
				out = append(out, m.Step(tok)...)
			}
			out = append(out, m.Finish()...)
			if got := paragraphTexts(out); !slices.Equal(got, tt.texts) {
				t.Errorf("emitted %q, want %q", got, tt.texts)
			}
		})
	}
}

func TestMachine_FinishDropUnterminated(t *testing.T) {
	opts := DefaultOptions()
	opts.DropUnterminated = true

	m := NewMachine(opts)
	for _, tok := range append([]Token{parTok("Body")}, textToks("tail")...) {
		m.Step(tok)
	}
	if out := m.Finish(); len(out) != 0 {
		t.Errorf("Finish() emitted %q, want nothing", paragraphTexts(out))
	}
	if m.Phase() != PhaseIdle {
		t.Errorf("Phase() = %v after Finish, want idle", m.Phase())
	}
}

func TestMachine_CustomStyles(t *testing.T) {
	opts := Options{FilteredStyles: []string{"Draft"}, TrimStyles: []string{"Underline"}}
	m := NewMachine(opts)

	var out []*Paragraph
	for _, tok := range append([]Token{parTok("TOC Heading"), runTok("Underline")}, textToks("a ")...) {
		out = append(out, m.Step(tok)...)
	}
	m.Step(runTok("Body"))
	if got := m.Pending(); got != " " {
		t.Errorf("Pending() = %q, want carried space", got)
	}
	out = append(out, m.Step(parTok("Draft"))...)
	out = append(out, m.Step(textTok('x'))...)
	out = append(out, m.Finish()...)

	if got := paragraphTexts(out); !slices.Equal(got, []string{"a "}) {
		t.Errorf("emitted %q, want TOC Heading paragraph only", got)
	}
	if m.Dropped() != 1 {
		t.Errorf("Dropped() = %d, want 1", m.Dropped())
	}
}

func TestMachine_ZeroOptionsUseDefaultStyles(t *testing.T) {
	m := NewMachine(Options{})

	var out []*Paragraph
	for _, tok := range append([]Token{parTok("TOC Heading")}, textToks("x")...) {
		out = append(out, m.Step(tok)...)
	}
	for _, tok := range append([]Token{parTok("Quote"), runTok("Citation-ReadThis")}, textToks("a ")...) {
		out = append(out, m.Step(tok)...)
	}
	m.Step(runTok("Body"))
	if got := m.Pending(); got != " " {
		t.Errorf("Pending() = %q, want carried space", got)
	}
	out = append(out, m.Finish()...)
	if got := paragraphTexts(out); !slices.Equal(got, []string{"a "}) {
		t.Errorf("emitted %q, want filtered TOC Heading", got)
	}

	m = NewMachine(Options{FilteredStyles: []string{}})
	out = nil
	for _, tok := range append([]Token{parTok("TOC Heading")}, textToks("x")...) {
		out = append(out, m.Step(tok)...)
	}
	out = append(out, m.Finish()...)
	if got := paragraphTexts(out); !slices.Equal(got, []string{"x"}) {
		t.Errorf("emitted %q, want filtering disabled", got)
	}
}
