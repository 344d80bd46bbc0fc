package shaderpark

import "embed"

// EmbeddedShaderFS provides the built-in unlit shaders used as the
// initial material until a watched shader compiles successfully.
//
//go:embed shaders
var EmbeddedShaderFS embed.FS
