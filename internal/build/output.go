package build

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"
)

// ErrOutputTooLarge is returned when the document exceeds size.max_bytes.
var ErrOutputTooLarge = errors.New("output exceeds size limit")

// IOError reports a failed filesystem operation on a build input or output.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// WriteOutput writes data to dir/name, creating dir as needed. The content
// goes to a temporary file in dir first and is renamed into place, so
// readers see either the previous file or the complete new one.
func WriteOutput(dir, name string, data []byte) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return &IOError{Op: "creating", Path: dir, Err: err}
	}

	target := filepath.Join(dir, name)
	if err := renameio.WriteFile(target, data, 0644, renameio.WithTempDir(dir), renameio.WithStaticPermissions(0644)); err != nil {
		return &IOError{Op: "writing", Path: target, Err: err}
	}
	return nil
}
