// Package shader defines shader stages and the compiler boundary used
// by the reload controller.
package shader

import (
	"path/filepath"
	"strings"
)

// Stage identifies a graphics pipeline shader stage.
type Stage int

const (
	StageUnknown Stage = iota
	StageVertex
	StageFragment
)

func (s Stage) String() string {
	switch s {
	case StageVertex:
		return "vertex"
	case StageFragment:
		return "fragment"
	default:
		return "unknown"
	}
}

// StageFromPath derives the stage from a file's extension. Shader files
// are identified purely by extension: .vert is vertex, .frag is
// fragment, anything else is unknown and skipped by the controller.
func StageFromPath(path string) Stage {
	switch filepath.Ext(path) {
	case ".vert":
		return StageVertex
	case ".frag":
		return StageFragment
	default:
		return StageUnknown
	}
}

// Stem returns the file name without directory or extension, the part
// matched against a configured prefix filter.
func Stem(path string) string {
	name := filepath.Base(path)
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// EntryPoint returns the conventional WGSL entry function for a stage.
func EntryPoint(stage Stage) string {
	switch stage {
	case StageVertex:
		return "vs_main"
	case StageFragment:
		return "fs_main"
	default:
		return ""
	}
}
