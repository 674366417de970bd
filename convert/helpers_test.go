package convert

import (
	"archive/zip"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/beevik/etree"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"fsxc/config"
	"fsxc/fsx"
	"fsxc/state"
)

func testLogger(t *testing.T) *zap.Logger {
	return zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller(), zap.AddCallerSkip(1)))
}

// setupTestEnv prepares context with default configuration and built-in
// template.
func setupTestEnv(t *testing.T) (context.Context, *state.LocalEnv) {
	t.Helper()

	cfg, err := config.LoadConfiguration("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	ctx := state.ContextWithEnv(context.Background())
	env := state.EnvFromContext(ctx)
	env.Log = testLogger(t)
	env.Cfg = cfg
	if err := env.LoadTemplate(""); err != nil {
		t.Fatalf("load template: %v", err)
	}
	return ctx, env
}

func testOptions(t *testing.T, env *state.LocalEnv) fsx.Options {
	t.Helper()

	opts, err := decoderOptions(&env.Cfg.Decoder)
	if err != nil {
		t.Fatalf("decoderOptions() error = %v", err)
	}
	return opts
}

func styled(op, name string) string {
	return "\x1b" + op + string([]byte{byte(29 + len(name))}) + name
}

// fsxStream builds stream with given title and one paragraph per text.
func fsxStream(title string, texts ...string) []byte {
	var b strings.Builder
	b.WriteString(title + "\n8.5,11\n1,1,1,1\nNormal\nDefault\nHeader\nFooter\n")
	for _, text := range texts {
		b.WriteString(styled("ST", "Normal"))
		b.WriteString(text)
		b.WriteString("\r\n")
	}
	return []byte(b.String())
}

func writeFile(t *testing.T, path string, data []byte) string {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func writeZip(t *testing.T, path string, files map[string][]byte, order ...string) string {
	t.Helper()

	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	w := zip.NewWriter(f)
	for _, name := range order {
		fw, err := w.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := fw.Write(files[name]); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return path
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// documentTexts returns text of all body paragraphs of saved document.
func documentTexts(t *testing.T, path string) []string {
	t.Helper()

	zr, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("open result %s: %v", path, err)
	}
	defer zr.Close()

	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatal(err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatal(err)
		}
		doc := etree.NewDocument()
		if err := doc.ReadFromBytes(data); err != nil {
			t.Fatal(err)
		}
		var texts []string
		for _, p := range doc.FindElements("//w:body/w:p") {
			var s string
			for _, t := range p.FindElements("w:r/w:t") {
				s += t.Text()
			}
			texts = append(texts, s)
		}
		return texts
	}
	t.Fatalf("no main document in %s", path)
	return nil
}
