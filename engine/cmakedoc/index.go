package cmakedoc

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/compozy/testproject/engine/core"
	"gopkg.in/yaml.v3"
)

// Index is the machine-readable form of a parsed CMake file
type Index struct {
	// Source is the input path as given. The index store keys files by it.
	Source    string      `json:"source" yaml:"source"`
	Callables []*Callable `json:"callables" yaml:"callables"`
}

// ExportIndex writes the callable index as "json" or "yaml"
func ExportIndex(w io.Writer, idx Index, format string) error {
	if idx.Callables == nil {
		idx.Callables = []*Callable{}
	}
	switch strings.ToLower(format) {
	case "", "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(idx)
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(idx); err != nil {
			return err
		}
		return enc.Close()
	default:
		return core.Errorf(core.ErrorCodeInvalidInput, map[string]any{"format": format},
			"unsupported index format %q (want json or yaml)", format)
	}
}
