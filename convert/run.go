// Package convert drives conversion of FSX streams to docx documents.
package convert

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/maruel/natural"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/ianaindex"

	"fsxc/archive"
	"fsxc/config"
	"fsxc/fsx"
	"fsxc/state"
)

// LegacyPreserveArg is accepted in place of --preserve flag.
const LegacyPreserveArg = "/P"

const inputExt = ".fsx"

func Run(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("convert")

	env.Preserve = cmd.Bool("preserve")
	args := make([]string, 0, cmd.Args().Len())
	for _, arg := range cmd.Args().Slice() {
		if strings.EqualFold(arg, LegacyPreserveArg) {
			env.Preserve = true
			continue
		}
		args = append(args, arg)
	}

	if len(args) == 0 || len(args[0]) == 0 {
		return errors.New("no input source has been specified")
	}
	src, err := filepath.Abs(args[0])
	if err != nil {
		return err
	}

	var dst string
	if len(args) > 1 && len(args[1]) > 0 {
		if dst, err = filepath.Abs(args[1]); err != nil {
			return err
		}
	}
	if len(args) > 2 {
		log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", args[2:]))
	}

	env.NoDirs, env.Overwrite = cmd.Bool("nodirs"), cmd.Bool("overwrite")

	// Since zip "standard" does not define file name encoding we may need to
	// force archaic code page for old archives
	if cp := cmd.String("force-zip-cp"); len(cp) > 0 {
		env.CodePage, err = ianaindex.IANA.Encoding(cp)
		if err != nil || env.CodePage == nil {
			log.Warn("Unknown character set specification. Ignoring...", zap.String("charset", cp), zap.Error(err))
			env.CodePage = nil
		} else {
			n, _ := ianaindex.IANA.Name(env.CodePage)
			log.Debug("Forcefully converting all non UTF-8 file names in archives", zap.String("charset", n))
		}
	}

	tmplPath := env.Cfg.Document.TemplatePath
	if p := cmd.String("template"); len(p) > 0 {
		tmplPath = p
	}
	if err := env.LoadTemplate(tmplPath); err != nil {
		return fmt.Errorf("unable to load document template: %w", err)
	}

	opts, err := decoderOptions(&env.Cfg.Decoder)
	if err != nil {
		return err
	}

	log.Info("Processing starting",
		zap.String("source", src), zap.String("destination", dst),
		zap.String("encoding", opts.Charset.Name()), zap.Bool("preserve", env.Preserve))
	defer func(start time.Time) {
		log.Info("Processing completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	return process(ctx, src, dst, opts, log)
}

// decoderOptions maps configuration to decoder options.
func decoderOptions(cfg *config.DecoderConfig) (fsx.Options, error) {
	opts := fsx.DefaultOptions()

	cs, err := fsx.LookupCharset(cfg.Encoding)
	if err != nil {
		return opts, fmt.Errorf("unable to prepare decoder: %w", err)
	}
	opts.Charset = cs
	if len(cfg.FilteredStyles) > 0 {
		opts.FilteredStyles = slices.Clone(cfg.FilteredStyles)
	}
	if len(cfg.TrimStyles) > 0 {
		opts.TrimStyles = slices.Clone(cfg.TrimStyles)
	}
	opts.DropUnterminated = cfg.DropUnterminated
	return opts, nil
}

// process determines the input type (directory, archive, or single file) and
// processes accordingly. Empty "dst" puts results next to the input.
func process(ctx context.Context, src, dst string, opts fsx.Options, log *zap.Logger) error {
	var head, tail string
	for head = src; len(head) != 0; head, tail = filepath.Split(head) {
		if err := ctx.Err(); err != nil {
			return err
		}

		head = strings.TrimSuffix(head, string(filepath.Separator))

		fi, err := os.Stat(head)
		if err != nil {
			// does not exists - probably path in archive
			continue
		}

		if fi.Mode().IsDir() {
			if len(tail) != 0 {
				// directory cannot have tail - it would be simple file
				return fmt.Errorf("input source was not found (%s) => (%s)", head, strings.TrimPrefix(src, head))
			}
			if len(dst) == 0 {
				dst = head
			}
			if err := processDir(ctx, head, dst, opts, log); err != nil {
				return fmt.Errorf("unable to process directory: %w", err)
			}
			break
		}

		if !fi.Mode().IsRegular() {
			return fmt.Errorf("unexpected path mode for (%s) => (%s)", head, strings.TrimPrefix(src, head))
		}

		if len(dst) == 0 {
			dst = filepath.Dir(head)
		}

		if isStreamFile(head) && len(tail) == 0 {
			if err := processFile(ctx, head, filepath.Base(head), dst, opts, log); err != nil {
				log.Error("Unable to process file", zap.String("file", head), zap.Error(err))
			}
			break
		}

		isArc, err := isArchiveFile(head)
		if err != nil {
			// checking format - but cannot open target file
			return fmt.Errorf("unable to check archive type: %w", err)
		}
		if isArc {
			// we need to look inside to see if path makes sense
			tail = filepath.ToSlash(strings.TrimPrefix(strings.TrimPrefix(src, head), string(filepath.Separator)))
			if err := processArchive(ctx, head, tail, "", dst, opts, log); err != nil {
				return fmt.Errorf("unable to process archive: %w", err)
			}
			break
		}
		return fmt.Errorf("input was not recognized as FSX stream (%s)", head)
	}
	if len(head) == 0 {
		return fmt.Errorf("input source was not found (%s)", src)
	}
	return nil
}

// processDir walks directory tree in natural name order finding streams and
// archives. Symbolic links are not followed.
func processDir(ctx context.Context, dir, dst string, opts fsx.Options, log *zap.Logger) (err error) {
	count := 0
	defer func() {
		if err == nil && count == 0 {
			log.Debug("Nothing to process", zap.String("dir", dir))
		}
	}()

	return walkDir(ctx, dir, func(path string) error {
		rel := strings.TrimPrefix(strings.TrimPrefix(path, dir), string(filepath.Separator))

		if isStreamFile(path) {
			count++
			if err := processFile(ctx, path, rel, dst, opts, log); err != nil {
				log.Error("Unable to process file", zap.String("file", path), zap.Error(err))
			}
			return nil
		}

		isArc, err := isArchiveFile(path)
		if err != nil {
			log.Warn("Skipping file", zap.String("file", path), zap.Error(err))
			return nil
		}
		if !isArc {
			log.Debug("Skipping file, not recognized as stream or archive", zap.String("file", path))
			return nil
		}
		count++
		if err := processArchive(ctx, path, "", filepath.Dir(rel), dst, opts, log); err != nil {
			log.Error("Unable to process archive", zap.String("file", path), zap.Error(err))
		}
		return nil
	})
}

func walkDir(ctx context.Context, dir string, fn func(path string) error) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	slices.SortFunc(entries, func(a, b os.DirEntry) int {
		switch {
		case natural.Less(a.Name(), b.Name()):
			return -1
		case natural.Less(b.Name(), a.Name()):
			return 1
		default:
			return 0
		}
	})

	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		path := filepath.Join(dir, e.Name())
		switch {
		case e.IsDir():
			if err := walkDir(ctx, path, fn); err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return err
				}
				// skip unreadable subdirectory, keep going
				continue
			}
		case e.Type().IsRegular():
			if err := fn(path); err != nil {
				return err
			}
		}
	}
	return nil
}

// processArchive processes streams inside archive under "pathIn". Archived
// files are never removed.
func processArchive(ctx context.Context, path, pathIn, pathOut, dst string, opts fsx.Options, log *zap.Logger) (err error) {
	count := 0
	defer func() {
		if err == nil && count == 0 {
			log.Debug("Nothing to process", zap.String("archive", path))
		}
	}()

	cp := state.EnvFromContext(ctx).CodePage

	return archive.Walk(path, pathIn, func(arc string, f *zip.File) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		pathInArchive := f.Name
		if cp != nil && f.NonUTF8 {
			// forcing zip file name encoding
			if n, err := cp.NewDecoder().String(pathInArchive); err == nil {
				pathInArchive = n
			} else {
				n, _ = ianaindex.IANA.Name(cp)
				log.Warn("Unable to convert archive name from specified encoding",
					zap.String("charset", n), zap.String("path", pathInArchive), zap.Error(err))
			}
		}
		if !isStreamFile(pathInArchive) {
			log.Debug("Skipping file, not recognized as stream", zap.String("archive", arc), zap.String("file", f.Name))
			return nil
		}

		count++
		if err := processArchived(ctx, f, filepath.Join(pathOut, filepath.FromSlash(pathInArchive)), dst, opts, log); err != nil {
			log.Error("Unable to process file in archive",
				zap.String("archive", arc), zap.String("file", f.Name), zap.Error(err))
		}
		return nil
	})
}

func processArchived(ctx context.Context, f *zip.File, src, dst string, opts fsx.Options, log *zap.Logger) error {
	r, err := f.Open()
	if err != nil {
		return err
	}
	defer r.Close()
	return processStream(ctx, r, src, "", dst, opts, log)
}

// Source file handles go through these, so sequence of close and remove could
// be observed.
var (
	openSource   = func(path string) (io.ReadCloser, error) { return os.Open(path) }
	removeSource = os.Remove
)

// processFile converts file on disk and removes it afterwards unless
// preservation was requested. Source is closed before removal, open file
// cannot be removed on Windows.
func processFile(ctx context.Context, path, src, dst string, opts fsx.Options, log *zap.Logger) (err error) {
	file, err := openSource(path)
	if err != nil {
		return err
	}
	err = processStream(ctx, file, src, path, dst, opts, log)
	if cerr := file.Close(); cerr != nil && err == nil {
		err = fmt.Errorf("unable to close source file: %w", cerr)
	}
	if err != nil || state.EnvFromContext(ctx).Preserve {
		return err
	}

	if err := removeSource(path); err != nil {
		return fmt.Errorf("unable to remove source file: %w", err)
	}
	log.Debug("Source removed", zap.String("file", path))
	return nil
}

func isStreamFile(name string) bool {
	return strings.EqualFold(filepath.Ext(name), inputExt)
}

// isArchiveFile checks content signature. Office packages are zip archives
// too, but never contain streams and are skipped.
func isArchiveFile(path string) (bool, error) {
	if ext := strings.ToLower(filepath.Ext(path)); ext == outputExt || ext == ".dotx" {
		return false, nil
	}

	file, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer file.Close()

	head := make([]byte, 262)
	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return false, err
	}
	return isZip(head[:n]), nil
}
