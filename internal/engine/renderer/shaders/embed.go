// Package shaders provides embedded GLSL shader sources.
package shaders

import _ "embed"

// ShellVertexShader places shell vertices and passes noise coordinates on.
//
//go:embed shell.vert
var ShellVertexShader string

// ShellFragmentShader shades one shell layer from a 3D noise field.
//
//go:embed shell.frag
var ShellFragmentShader string
