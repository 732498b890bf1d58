// Package shaders embeds the GLSL sources of the custom scene materials.
package shaders

import _ "embed"

//go:embed floor.vert
var FloorVertex string

//go:embed floor.frag
var FloorFragment string
