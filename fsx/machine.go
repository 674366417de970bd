package fsx

import "fmt"

// Phase is state of the paragraph/run assembly.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseParagraphOpen
	PhaseParagraphAndRunOpen

	phaseCount
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseParagraphOpen:
		return "paragraph-open"
	case PhaseParagraphAndRunOpen:
		return "paragraph-and-run-open"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

type transition func(m *Machine, tok Token)

// transitions is indexed by current phase and incoming token kind. Missing
// entries are no-ops.
var transitions = [phaseCount][tokenKindCount]transition{
	PhaseIdle: {
		TokenText:           (*Machine).textIdle,
		TokenStartParagraph: (*Machine).startParagraph,
		TokenStartRun:       (*Machine).startRunIdle,
		TokenIgnore:         (*Machine).toggleIgnore,
	},
	PhaseParagraphOpen: {
		TokenText:           (*Machine).textParagraph,
		TokenBreak:          (*Machine).breakParagraph,
		TokenStartParagraph: (*Machine).startParagraph,
		TokenStartRun:       (*Machine).startRunParagraph,
		TokenIgnore:         (*Machine).toggleIgnore,
	},
	PhaseParagraphAndRunOpen: {
		TokenText:           (*Machine).textRun,
		TokenBreak:          (*Machine).breakParagraph,
		TokenStartParagraph: (*Machine).startParagraph,
		TokenStartRun:       (*Machine).startRunRun,
		TokenIgnore:         (*Machine).toggleIgnore,
	},
}

// Machine assembles paragraphs from tokens. It holds at most one open
// paragraph and at most one open run, text is accumulated in pending and
// moved into the run when the run is closed.
type Machine struct {
	par     *Paragraph
	run     *Run
	pending []rune
	ignore  bool
	tainted bool // open paragraph received text inside ignored region

	filtered map[string]struct{}
	trimmed  map[string]struct{}
	dropTail bool

	out     []*Paragraph
	dropped int
}

// NewMachine returns machine in idle phase.
func NewMachine(opts Options) *Machine {
	filtered, trimmed := opts.FilteredStyles, opts.TrimStyles
	if filtered == nil {
		filtered = defaultFilteredStyles
	}
	if trimmed == nil {
		trimmed = defaultTrimStyles
	}
	return &Machine{
		filtered: styleSet(filtered),
		trimmed:  styleSet(trimmed),
		dropTail: opts.DropUnterminated,
	}
}

// Phase reports current state.
func (m *Machine) Phase() Phase {
	switch {
	case m.par == nil:
		return PhaseIdle
	case m.run == nil:
		return PhaseParagraphOpen
	default:
		return PhaseParagraphAndRunOpen
	}
}

// Ignoring reports whether machine is inside ignored region.
func (m *Machine) Ignoring() bool {
	return m.ignore
}

// Dropped returns number of closed paragraphs rejected by emission filter.
func (m *Machine) Dropped() int {
	return m.dropped
}

// Pending returns text accumulated for the open run.
func (m *Machine) Pending() string {
	return string(m.pending)
}

// Step applies token and returns paragraphs closed by it which passed
// emission filter, in order.
func (m *Machine) Step(tok Token) []*Paragraph {
	m.out = nil
	if tok.Kind < 0 || tok.Kind >= tokenKindCount {
		return nil
	}
	if fn := transitions[m.Phase()][tok.Kind]; fn != nil {
		fn(m, tok)
	}
	return m.out
}

// Finish closes whatever is still open at the end of stream.
func (m *Machine) Finish() []*Paragraph {
	m.out = nil
	if m.dropTail {
		m.par, m.run, m.pending = nil, nil, m.pending[:0]
		return nil
	}
	m.flushRun()
	m.closeParagraph()
	return m.out
}

func (m *Machine) textIdle(tok Token) {
	m.openParagraph("")
	m.textParagraph(tok)
}

func (m *Machine) textParagraph(tok Token) {
	m.openRun("")
	m.textRun(tok)
}

func (m *Machine) textRun(tok Token) {
	if m.ignore {
		m.tainted = true
	}
	m.pending = append(m.pending, tok.Char)
}

func (m *Machine) startParagraph(tok Token) {
	m.flushRun()
	m.closeParagraph()
	m.openParagraph(tok.Style)
}

func (m *Machine) startRunIdle(tok Token) {
	m.openParagraph("")
	m.startRunParagraph(tok)
}

func (m *Machine) startRunParagraph(tok Token) {
	m.openRun(tok.Style)
}

func (m *Machine) startRunRun(tok Token) {
	m.flushRunTrimmed()
	m.openRun(tok.Style)
}

// breakParagraph closes paragraph and opens continuation with the same
// paragraph and character styles.
func (m *Machine) breakParagraph(Token) {
	parStyle, runStyle := m.par.Style, ""
	if m.run != nil {
		runStyle = m.run.Style
	}
	m.flushRun()
	m.closeParagraph()
	m.openParagraph(parStyle)
	m.openRun(runStyle)
}

func (m *Machine) toggleIgnore(tok Token) {
	m.ignore = tok.Ignore
}

func (m *Machine) openParagraph(style string) {
	m.par = &Paragraph{Style: style}
	m.tainted = false
	m.run = nil
	m.pending = m.pending[:0]
}

func (m *Machine) openRun(style string) {
	m.run = &Run{Style: style}
}

// flushRun moves pending text into the run as is, run without text is
// dropped.
func (m *Machine) flushRun() {
	if m.run == nil {
		return
	}
	if len(m.pending) > 0 {
		m.run.Text = string(m.pending)
		m.par.Runs = append(m.par.Runs, *m.run)
	}
	m.run = nil
	m.pending = m.pending[:0]
}

// flushRunTrimmed closes run on character style change. For quotation styles
// trailing space is moved from the closed run to the next one.
func (m *Machine) flushRunTrimmed() {
	text, carry := m.pending, false
	if n := len(text); n > 0 && text[n-1] == space {
		if _, ok := m.trimmed[m.run.Style]; ok {
			text, carry = text[:n-1], true
		}
	}
	m.run.Text = string(text)
	m.par.Runs = append(m.par.Runs, *m.run)
	m.run = nil
	m.pending = m.pending[:0]
	if carry {
		m.pending = append(m.pending, space)
	}
}

func (m *Machine) closeParagraph() {
	if m.par == nil {
		return
	}
	if m.emittable(m.par) {
		m.out = append(m.out, m.par)
	} else {
		m.dropped++
	}
	m.par = nil
}

func (m *Machine) emittable(p *Paragraph) bool {
	if m.ignore || m.tainted || len(p.Text()) == 0 {
		return false
	}
	_, filtered := m.filtered[p.Style]
	return !filtered
}
