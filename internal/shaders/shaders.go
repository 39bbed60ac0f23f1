// Package shaders holds the display pipeline's WGSL sources and compiles
// them in-process to SPIR-V. It replaces the old out-of-tree glslc batch
// invocation: the same inputs and .spv outputs, minus the external
// toolchain dependency.
package shaders

import (
	"embed"
	"encoding/binary"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gogpu/naga"
)

//go:embed src/*.wgsl
var sources embed.FS

// Magic is the SPIR-V magic number in host (little-endian) word order.
const Magic = 0x07230203

// Names lists the embedded shader module names, sorted, without the
// .wgsl extension.
func Names() []string {
	entries, err := fs.ReadDir(sources, "src")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".wgsl"))
	}
	sort.Strings(names)
	return names
}

// Source returns the WGSL text of an embedded shader module.
func Source(name string) (string, error) {
	data, err := fs.ReadFile(sources, "src/"+name+".wgsl")
	if err != nil {
		return "", fmt.Errorf("shader %q not embedded: %w", name, err)
	}
	return string(data), nil
}

// Compile compiles an embedded shader module to SPIR-V.
func Compile(name string) ([]byte, error) {
	src, err := Source(name)
	if err != nil {
		return nil, err
	}
	return CompileSource(src, false)
}

// CompileSource compiles WGSL text to SPIR-V, optionally with debug info.
func CompileSource(src string, debug bool) ([]byte, error) {
	opts := naga.DefaultOptions()
	opts.Debug = debug

	spirv, err := naga.CompileWithOptions(src, opts)
	if err != nil {
		return nil, fmt.Errorf("compile shader: %w", err)
	}
	if err := ValidateSPIRV(spirv); err != nil {
		return nil, err
	}
	return spirv, nil
}

// CompileAll compiles every embedded shader and writes <name>.spv files
// into outDir, creating it if needed. It returns the output paths.
func CompileAll(outDir string) ([]string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("create shader output dir: %w", err)
	}

	var written []string
	for _, name := range Names() {
		spirv, err := Compile(name)
		if err != nil {
			return nil, fmt.Errorf("shader %q: %w", name, err)
		}
		path := filepath.Join(outDir, name+".spv")
		if err := os.WriteFile(path, spirv, 0o644); err != nil {
			return nil, fmt.Errorf("write %s: %w", path, err)
		}
		written = append(written, path)
	}
	return written, nil
}

// ValidateSPIRV checks the SPIR-V header: word alignment and the magic
// number in little-endian byte order.
func ValidateSPIRV(b []byte) error {
	if len(b) < 20 {
		return fmt.Errorf("SPIR-V module too short: %d bytes", len(b))
	}
	if len(b)%4 != 0 {
		return fmt.Errorf("SPIR-V module not word-aligned: %d bytes", len(b))
	}
	if magic := binary.LittleEndian.Uint32(b[:4]); magic != Magic {
		return fmt.Errorf("bad SPIR-V magic 0x%08x", magic)
	}
	return nil
}
