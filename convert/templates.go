package convert

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"text/template"

	sprig "github.com/go-task/slim-sprig/v3"

	"fsxc/config"
	"fsxc/fsx"
)

// Values is a struct that holds variables we make available for template expansion
type Values struct {
	Context             string
	Title               string
	SourceFile          string
	StyleSheet          string
	CharacterStyleSheet string
	Header              string
	Footer              string
	Width               float64
	Height              float64
	Format              string
}

func newValues(md *fsx.Metadata, name config.TemplateFieldName, src string) Values {
	v := Values{
		Context:    string(name),
		SourceFile: strings.TrimSuffix(filepath.Base(src), filepath.Ext(src)),
		Format:     strings.TrimPrefix(outputExt, "."),
	}
	if md != nil {
		v.Title = md.Title
		v.StyleSheet = md.StyleSheet
		v.CharacterStyleSheet = md.CharacterStyleSheet
		v.Header = md.Header
		v.Footer = md.Footer
		v.Width = md.Width
		v.Height = md.Height
	}
	return v
}

func expandTemplate(md *fsx.Metadata, name config.TemplateFieldName, field, src string) (string, error) {
	tmpl, err := template.New(string(name)).Funcs(sprig.FuncMap()).Parse(field)
	if err != nil {
		return "", fmt.Errorf("unable to parse template field %s: %w", name, err)
	}

	buf := new(bytes.Buffer)
	if err := tmpl.Execute(buf, newValues(md, name, src)); err != nil {
		return "", err
	}
	return buf.String(), nil
}
