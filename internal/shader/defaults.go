package shader

import (
	"fmt"

	"shaderpark"
)

// DefaultSource returns the embedded unlit shader source for a stage.
func DefaultSource(stage Stage) (string, error) {
	var name string
	switch stage {
	case StageVertex:
		name = "shaders/unlit.vert"
	case StageFragment:
		name = "shaders/unlit.frag"
	default:
		return "", fmt.Errorf("shader: no default source for stage %q", stage)
	}

	payload, err := shaderpark.EmbeddedShaderFS.ReadFile(name)
	if err != nil {
		return "", fmt.Errorf("shader: read embedded %s: %w", name, err)
	}
	return string(payload), nil
}
