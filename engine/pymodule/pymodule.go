// Package pymodule reads the module name compiled into a Python extension.
//
// CPython locates an extension's entry point by the exported symbol
// PyInit_<name>; the name must match the file's import name or the import
// fails. Inspect finds that symbol by scanning the raw bytes, so it works
// for ELF, Mach-O and PE files alike.
package pymodule

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/compozy/testproject/engine/core"
)

var initSymbolRe = regexp.MustCompile(`PyInit_([a-zA-Z0-9_]+)`)

// Extensions lists the accepted extension module file suffixes
var Extensions = []string{".so", ".pyd"}

func validate(path string) error {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return core.Errorf(core.ErrorCodeInvalidInput, map[string]any{"path": path},
			"invalid file provided: %s", path)
	}
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range Extensions {
		if ext == e {
			return nil
		}
	}
	return core.Errorf(core.ErrorCodeInvalidInput, map[string]any{"path": path},
		"invalid file provided: %s", path)
}

// Inspect returns the module name from the first PyInit_ symbol in path,
// or "" when the file carries none.
func Inspect(path string) (string, error) {
	if err := validate(path); err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", core.NewError(err, core.ErrorCodeFileNotFound, map[string]any{"path": path})
		}
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return Find(data), nil
}

// Find returns the module name from the first PyInit_ symbol in data
func Find(data []byte) string {
	m := initSymbolRe.FindSubmatch(data)
	if m == nil {
		return ""
	}
	return string(m[1])
}

// Check verifies that path exports PyInit_<expected>
func Check(path, expected string) error {
	name, err := Inspect(path)
	if err != nil {
		return err
	}
	if name != expected {
		return core.Errorf(core.ErrorCodeModuleNameMismatch,
			map[string]any{"path": path, "expected": expected, "found": name},
			"module name mismatch. Expected '%s', found '%s'", expected, name)
	}
	return nil
}
