package fsx

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"
)

// Assembler drives Machine with tokens from Lexer and forwards emitted
// paragraphs to Sink.
type Assembler struct {
	sink Sink
	m    *Machine
	log  *zap.Logger

	emitted  int
	unknown  int
	controls int
}

// NewAssembler returns assembler writing into sink.
func NewAssembler(sink Sink, opts Options, log *zap.Logger) *Assembler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Assembler{sink: sink, m: NewMachine(opts), log: log}
}

// Title inserts title paragraph when header has one. Must be called before
// Consume.
func (a *Assembler) Title(md *Metadata) error {
	if md == nil || len(md.Title) == 0 {
		return nil
	}
	if err := a.sink.InsertTitle(md.Title); err != nil {
		return fmt.Errorf("unable to insert title: %w", err)
	}
	return nil
}

// Consume reads all tokens from lexer. Cancellation is checked before every
// token, on cancellation nothing else is sent to the sink.
func (a *Assembler) Consume(ctx context.Context, lx *Lexer) error {
	done := ctx.Done()
	for {
		if done != nil {
			select {
			case <-done:
				return ctx.Err()
			default:
			}
		}

		tok, err := lx.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}

		switch tok.Kind {
		case TokenUnknown:
			a.unknown++
			a.log.Debug("Skipping unknown escape sequence", zap.String("opcode", tok.Opcode), zap.Int64("offset", tok.Offset))
		case TokenControl:
			a.controls++
		}

		if err := a.emit(a.m.Step(tok)); err != nil {
			return err
		}
	}

	if a.m.Phase() != PhaseIdle && a.m.dropTail {
		a.log.Debug("Dropping unterminated content at the end of stream", zap.Stringer("phase", a.m.Phase()))
	}
	return a.emit(a.m.Finish())
}

func (a *Assembler) emit(pars []*Paragraph) error {
	for _, p := range pars {
		if err := a.sink.AppendParagraph(p); err != nil {
			return fmt.Errorf("unable to append paragraph: %w", err)
		}
		a.emitted++
	}
	return nil
}

// Decode reads complete FSX stream from r: header first, then content. Title
// and paragraphs are delivered to sink as they are decoded. On error sink may
// hold partial content and must be discarded by the caller.
func Decode(ctx context.Context, r io.Reader, sink Sink, opts Options, log *zap.Logger) (*Metadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("fsx")

	s := newStream(bufio.NewReader(r), opts.Charset)

	md, err := s.readHeader()
	if err != nil {
		return nil, fmt.Errorf("unable to read header: %w", err)
	}
	log.Debug("Header decoded", zap.String("title", md.Title), zap.String("charset", s.cs.Name()),
		zap.Float64("width", md.Width), zap.Float64("height", md.Height),
		zap.String("style_sheet", md.StyleSheet), zap.String("character_style_sheet", md.CharacterStyleSheet))

	a := NewAssembler(sink, opts, log)
	if err := a.Title(md); err != nil {
		return nil, err
	}
	if err := a.Consume(ctx, &Lexer{s: s}); err != nil {
		return nil, err
	}

	log.Debug("Content decoded",
		zap.Int64("bytes", s.off),
		zap.Int("paragraphs", a.emitted),
		zap.Int("dropped", a.m.Dropped()),
		zap.Int("unknown_escapes", a.unknown),
		zap.Int("control_bytes", a.controls))
	return md, nil
}
