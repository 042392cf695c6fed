package assets

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingDependency matches any *MissingDependencyError.
	ErrMissingDependency = errors.New("missing dependency")
	// ErrMissingAsset matches any *MissingAssetError.
	ErrMissingAsset = errors.New("missing asset")
)

// MissingDependencyError reports a dependency whose distribution directory
// does not exist.
type MissingDependencyError struct {
	Package string
	Dir     string
	Install string
}

func (e *MissingDependencyError) Error() string {
	msg := fmt.Sprintf("missing %s (no directory %s)", e.Package, e.Dir)
	if e.Install != "" {
		msg += ". Run: " + e.Install
	}
	return msg
}

func (e *MissingDependencyError) Is(target error) bool { return target == ErrMissingDependency }

// MissingAssetError reports a required asset that no directory entry matched.
type MissingAssetError struct {
	Asset    string
	Dir      string
	Patterns []string
}

func (e *MissingAssetError) Error() string {
	return fmt.Sprintf("asset %s not found in %s (patterns: %s)", e.Asset, e.Dir, strings.Join(e.Patterns, ", "))
}

func (e *MissingAssetError) Is(target error) bool { return target == ErrMissingAsset }
