package state

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"fsxc/docx"
)

// newLocalEnv creates a new LocalEnv instance with default values
func newLocalEnv() *LocalEnv {
	return &LocalEnv{
		start: time.Now(),
	}
}

// LoadTemplate reads document template from path, empty path selects
// built-in template. Loaded template is kept in environment and stored in
// debug report if one is being produced.
func (e *LocalEnv) LoadTemplate(path string) error {
	var (
		name = path
		data []byte
		err  error
	)
	if len(path) == 0 {
		name = docx.DefaultTemplateName
		data, err = docx.BuildDefaultTemplate()
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return fmt.Errorf("unable to read template '%s': %w", name, err)
	}

	if e.Template, err = docx.LoadTemplate(name, data); err != nil {
		return err
	}
	if e.Log != nil {
		e.Log.Debug("Document template loaded", zap.String("template", name))
	}
	if e.Rpt != nil && len(path) > 0 {
		e.Rpt.Store(fmt.Sprintf("template/%s", filepath.Base(path)), path)
	}
	return nil
}
