// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package native

import (
	_ "embed"
	"fmt"

	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"
)

//go:embed shaders/atlas.wgsl
var atlasShaderSource string

// Vertex layout of one glyph instance in atlas.wgsl.
const (
	// GlyphInstanceSize is the byte stride of a glyph instance:
	// pos (2 x i32), dim (u32), uv (u32), color (u32), content type (u32),
	// depth (f32).
	GlyphInstanceSize = 28

	// ParamsSize is the byte size of the Params uniform.
	ParamsSize = 16
)

// compileShaderToSPIRV compiles WGSL source to SPIR-V words.
func compileShaderToSPIRV(wgslSource string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(wgslSource)
	if err != nil {
		return nil, fmt.Errorf("native: compile atlas shader: %w", err)
	}
	if len(spirvBytes)%4 != 0 {
		return nil, fmt.Errorf("native: compile atlas shader: SPIR-V length %d is not word aligned", len(spirvBytes))
	}

	// SPIR-V is little-endian 32-bit words
	spirvCode := make([]uint32, len(spirvBytes)/4)
	for i := range spirvCode {
		spirvCode[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return spirvCode, nil
}

// createAtlasShader compiles atlas.wgsl and creates the shader module.
func createAtlasShader(device hal.Device) (hal.ShaderModule, error) {
	code, err := compileShaderToSPIRV(atlasShaderSource)
	if err != nil {
		return nil, err
	}
	module, err := device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "glyphatlas_text_shader",
		Source: hal.ShaderSource{SPIRV: code},
	})
	if err != nil {
		return nil, fmt.Errorf("native: create atlas shader module: %w", err)
	}
	return module, nil
}
