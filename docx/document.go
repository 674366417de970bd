package docx

import (
	"errors"
	"fmt"

	"github.com/beevik/etree"
	"go.uber.org/zap"

	"fsxc/config"
	"fsxc/fsx"
)

type styleKey struct {
	role Role
	name string
}

// Document accumulates paragraphs in the template body. It implements
// fsx.Sink and is not safe for concurrent use.
type Document struct {
	tmpl       *Template
	doc        *etree.Document
	body       *etree.Element
	sect       *etree.Element
	core       *etree.Document
	titleStyle string
	fixZip     bool
	hasTitle   bool
	paragraphs int
	misses     map[styleKey]struct{}
	log        *zap.Logger
}

var _ fsx.Sink = (*Document)(nil)

// NewDocument prepares new document from template.
func NewDocument(t *Template, cfg *config.DocumentConfig, log *zap.Logger) (*Document, error) {
	if log == nil {
		log = zap.NewNop()
	}
	doc, err := t.parse(partDocument)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, fmt.Errorf("template %s has no main document part", t.Name)
	}
	core, err := t.parse(partCore)
	if err != nil {
		return nil, err
	}

	d := &Document{
		tmpl:       t,
		doc:        doc,
		body:       doc.FindElement("//w:body"),
		core:       core,
		titleStyle: cfg.TitleStyle,
		fixZip:     cfg.FixZip,
		misses:     make(map[styleKey]struct{}),
		log:        log.Named("docx"),
	}
	if d.body == nil {
		return nil, fmt.Errorf("template %s has no document body", t.Name)
	}
	if children := d.body.ChildElements(); len(children) > 0 {
		if last := children[len(children)-1]; last.Space == "w" && last.Tag == "sectPr" {
			d.sect = last
		}
	}
	return d, nil
}

// Paragraphs returns number of paragraphs added to the body, title included.
func (d *Document) Paragraphs() int {
	return d.paragraphs
}

// InsertTitle puts title paragraph in front of the body.
func (d *Document) InsertTitle(text string) error {
	if d.hasTitle {
		return errors.New("document title is already set")
	}
	d.hasTitle = true

	p := d.paragraph(&fsx.Paragraph{
		Style: d.titleStyle,
		Runs:  []fsx.Run{{Text: text}},
	})
	d.body.InsertChildAt(0, p)
	d.paragraphs++
	return nil
}

// AppendParagraph adds paragraph at the end of the body, before section
// properties.
func (d *Document) AppendParagraph(par *fsx.Paragraph) error {
	p := d.paragraph(par)
	if d.sect != nil {
		d.body.InsertChildAt(d.sect.Index(), p)
	} else {
		d.body.AddChild(p)
	}
	d.paragraphs++
	return nil
}

// SetMetadata records document properties.
func (d *Document) SetMetadata(md *fsx.Metadata) {
	if d.core == nil || md == nil {
		return
	}
	props := d.core.Root()
	if props == nil {
		return
	}
	title := props.FindElement("dc:title")
	if title == nil {
		title = props.CreateElement("dc:title")
	}
	title.SetText(md.Title)
}

func (d *Document) paragraph(par *fsx.Paragraph) *etree.Element {
	p := etree.NewElement("w:p")
	if id, ok := d.resolve(par.Style, RoleParagraph); ok {
		p.CreateElement("w:pPr").CreateElement("w:pStyle").CreateAttr("w:val", id)
	}
	for _, run := range par.Runs {
		if len(run.Text) == 0 {
			continue
		}
		r := p.CreateElement("w:r")
		if id, ok := d.resolve(run.Style, RoleCharacter); ok {
			r.CreateElement("w:rPr").CreateElement("w:rStyle").CreateAttr("w:val", id)
		}
		t := r.CreateElement("w:t")
		t.CreateAttr("xml:space", "preserve")
		t.SetText(run.Text)
	}
	return p
}

func (d *Document) resolve(name string, role Role) (string, bool) {
	if len(name) == 0 {
		return "", false
	}
	id, ok := d.tmpl.styles.Resolve(name, role)
	if ok {
		return id, true
	}
	key := styleKey{role: role, name: name}
	if _, seen := d.misses[key]; !seen {
		d.misses[key] = struct{}{}
		d.log.Debug("Style not found in template, using default formatting",
			zap.String("style", name), zap.Stringer("role", role))
	}
	return "", false
}
