package convert

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"github.com/h2non/filetype"
	"go.uber.org/zap"
	yaml "gopkg.in/yaml.v3"

	"fsxc/docx"
	"fsxc/fsx"
	"fsxc/state"
)

func isZip(head []byte) bool {
	kind, err := filetype.Archive(head)
	return err == nil && kind.Extension == "zip"
}

// processStream converts single FSX stream. "src" is part of the source path
// (always including file name) relative to the destination root. "origin" is
// path of the source file on disk stored in debug report, empty for archived
// files.
func processStream(ctx context.Context, r io.Reader, src, origin, dst string, opts fsx.Options, log *zap.Logger) (rerr error) {
	env := state.EnvFromContext(ctx)

	var (
		refID      = uuid.NewString()
		outputName string
		paragraphs int
	)

	log.Info("Conversion starting", zap.String("from", src), zap.String("ref_id", refID))
	defer func(start time.Time) {
		// one broken stream should not stop processing of others
		if r := recover(); r != nil {
			log.Error("Conversion ended with panic",
				zap.Any("panic", r), zap.Duration("elapsed", time.Since(start)), zap.String("to", outputName), zap.ByteString("stack", debug.Stack()))
			rerr = fmt.Errorf("conversion panic: %v", r)
		} else if rerr == nil {
			log.Info("Conversion completed",
				zap.Duration("elapsed", time.Since(start)), zap.String("to", outputName), zap.Int("paragraphs", paragraphs), zap.String("ref_id", refID))
		}
	}(time.Now())

	if len(origin) > 0 {
		if err := env.Rpt.StoreCopy(fmt.Sprintf("source-%s%s", refID, filepath.Ext(origin)), origin); err != nil {
			log.Warn("Unable to store source in report", zap.String("file", origin), zap.Error(err))
		}
	}

	doc, err := docx.NewDocument(env.Template, &env.Cfg.Document, log)
	if err != nil {
		return fmt.Errorf("unable to prepare document: %w", err)
	}

	md, err := fsx.Decode(ctx, r, doc, opts, log)
	if err != nil {
		return fmt.Errorf("unable to decode fsx source (%s): %w", src, err)
	}
	doc.SetMetadata(md)
	paragraphs = doc.Paragraphs()

	if env.Rpt != nil {
		if data, err := yaml.Marshal(md); err == nil {
			env.Rpt.StoreData(fmt.Sprintf("header-%s.yaml", refID), data)
		}
	}

	outputName = buildOutputPath(md, src, dst, env)

	if _, err := os.Stat(outputName); err == nil {
		if !env.Overwrite {
			return fmt.Errorf("output file already exists: %s", outputName)
		}
		log.Warn("Overwriting existing file", zap.String("file", outputName))
	} else if !os.IsNotExist(err) {
		return err
	} else if err := os.MkdirAll(filepath.Dir(outputName), 0755); err != nil {
		return fmt.Errorf("unable to create output directory: %w", err)
	}

	if err := doc.Save(outputName); err != nil {
		return fmt.Errorf("unable to save document: %w", err)
	}

	if env.Rpt != nil {
		env.Rpt.Store(fmt.Sprintf("result-%s%s", refID, outputExt), outputName)
	}
	return nil
}
