package docx

import (
	"archive/zip"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/beevik/etree"
	"github.com/google/uuid"
	fixzip "github.com/hidez8891/zip"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Save writes document package to path. Package is assembled in a temporary
// file next to destination and renamed into place when complete.
func (d *Document) Save(path string) (err error) {
	dir, base := filepath.Split(path)
	tmp := filepath.Join(dir, "."+base+"."+uuid.NewString()+".tmp")

	defer func() {
		if err != nil {
			os.Remove(tmp)
		}
	}()

	if err = d.write(tmp); err != nil {
		return err
	}

	if d.fixZip {
		fixed := tmp + ".fix"
		defer os.Remove(fixed)
		if err = fixZip(tmp, fixed); err != nil {
			return err
		}
		if err = os.Rename(fixed, tmp); err != nil {
			return fmt.Errorf("unable to replace document: %w", err)
		}
	}

	if err = os.Rename(tmp, path); err != nil {
		return fmt.Errorf("unable to save document: %w", err)
	}
	d.log.Debug("Document saved", zap.String("path", path), zap.Int("paragraphs", d.paragraphs))
	return nil
}

func (d *Document) write(path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("unable to create document: %w", err)
	}
	defer func() {
		err = multierr.Append(err, f.Close())
	}()

	zw := zip.NewWriter(f)
	defer func() {
		err = multierr.Append(err, zw.Close())
	}()

	replaced := map[string]*etree.Document{partDocument: d.doc}
	if d.core != nil {
		replaced[partCore] = d.core
	}

	now := time.Now()
	for _, p := range d.tmpl.parts {
		data := p.data
		modified := p.modified
		if doc, ok := replaced[p.name]; ok {
			if data, err = doc.WriteToBytes(); err != nil {
				return fmt.Errorf("unable to serialize %s: %w", p.name, err)
			}
			modified = now
		}
		w, cerr := zw.CreateHeader(&zip.FileHeader{
			Name:     p.name,
			Method:   zip.Deflate,
			Modified: modified,
		})
		if cerr != nil {
			return fmt.Errorf("unable to add %s: %w", p.name, cerr)
		}
		if _, err := w.Write(data); err != nil {
			return fmt.Errorf("unable to write %s: %w", p.name, err)
		}
	}
	return nil
}

// fixZip rewrites archive without data descriptors, some readers are unable
// to process them.
func fixZip(from, to string) (err error) {
	out, err := os.Create(to)
	if err != nil {
		return fmt.Errorf("unable to create target file (%s): %w", to, err)
	}
	defer func() {
		err = multierr.Append(err, out.Close())
	}()

	r, err := fixzip.OpenReader(from)
	if err != nil {
		return fmt.Errorf("unable to read archive file (%s): %w", from, err)
	}
	defer r.Close()

	w := fixzip.NewWriter(out)
	defer func() {
		err = multierr.Append(err, w.Close())
	}()

	for _, file := range r.File {
		file.Flags &= ^fixzip.FlagDataDescriptor
		if err := w.CopyFile(file); err != nil {
			return fmt.Errorf("unable to write target file (%s): %w", to, err)
		}
	}
	return nil
}
