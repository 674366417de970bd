// Package docx realizes decoded FSX content as WordprocessingML document built
// on top of a template.
package docx

import (
	"archive/zip"
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"time"

	"github.com/beevik/etree"
	"github.com/h2non/filetype"
)

const (
	partContentTypes = "[Content_Types].xml"
	partRels         = "_rels/.rels"
	partDocument     = "word/document.xml"
	partDocumentRels = "word/_rels/document.xml.rels"
	partStyles       = "word/styles.xml"
	partCore         = "docProps/core.xml"
)

var (
	//go:embed default/content_types.xml
	defaultContentTypes []byte
	//go:embed default/rels.xml
	defaultRels []byte
	//go:embed default/document.xml
	defaultDocument []byte
	//go:embed default/document.xml.rels
	defaultDocumentRels []byte
	//go:embed default/styles.xml
	defaultStyles []byte
	//go:embed default/core.xml
	defaultCore []byte
)

// DefaultTemplateName is reported for built-in template.
const DefaultTemplateName = "<built-in>"

type part struct {
	name     string
	data     []byte
	modified time.Time
}

// Template keeps all parts of the template package. Parts produced by
// conversion are replaced on save, everything else is copied as is.
type Template struct {
	Name   string
	parts  []part
	styles *Styles
}

// BuildDefaultTemplate returns zipped built-in template. Order of parts
// matters to content sniffers, main document goes third.
func BuildDefaultTemplate() ([]byte, error) {
	buf := new(bytes.Buffer)
	zw := zip.NewWriter(buf)
	for _, p := range []part{
		{name: partContentTypes, data: defaultContentTypes},
		{name: partRels, data: defaultRels},
		{name: partDocument, data: defaultDocument},
		{name: partDocumentRels, data: defaultDocumentRels},
		{name: partStyles, data: defaultStyles},
		{name: partCore, data: defaultCore},
	} {
		w, err := zw.Create(p.name)
		if err != nil {
			return nil, err
		}
		if _, err := w.Write(p.data); err != nil {
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// LoadTemplate reads template package from data.
func LoadTemplate(name string, data []byte) (*Template, error) {
	kind, err := filetype.Match(data)
	if err != nil {
		return nil, fmt.Errorf("unable to detect template type: %w", err)
	}
	if kind.Extension != "docx" && kind.Extension != "zip" {
		return nil, fmt.Errorf("template %s is not a docx file (detected %q)", name, kind.MIME.Value)
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("unable to open template %s: %w", name, err)
	}

	t := &Template{Name: name}
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		content, err := readPart(f)
		if err != nil {
			return nil, fmt.Errorf("unable to read template %s part %s: %w", name, f.Name, err)
		}
		t.parts = append(t.parts, part{name: f.Name, data: content, modified: f.Modified})
	}

	doc, err := t.parse(partDocument)
	if err != nil {
		return nil, err
	}
	if doc == nil || doc.FindElement("//w:body") == nil {
		return nil, fmt.Errorf("template %s has no document body", name)
	}

	styles, err := t.parse(partStyles)
	if err != nil {
		return nil, err
	}
	t.styles = parseStyles(styles)
	return t, nil
}

func readPart(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// Styles returns styles defined by template.
func (t *Template) Styles() *Styles {
	return t.styles
}

func (t *Template) find(name string) *part {
	for i := range t.parts {
		if t.parts[i].name == name {
			return &t.parts[i]
		}
	}
	return nil
}

// parse returns fresh XML tree of the part or nil if template does not have
// it.
func (t *Template) parse(name string) (*etree.Document, error) {
	p := t.find(name)
	if p == nil {
		return nil, nil
	}
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(p.data); err != nil {
		return nil, fmt.Errorf("unable to parse template %s part %s: %w", t.Name, name, err)
	}
	return doc, nil
}
