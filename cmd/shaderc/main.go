// Command shaderc compiles the display pipeline's WGSL shaders to SPIR-V.
//
// Usage:
//
//	shaderc [options] [input.wgsl ...]
//
// With no inputs, the embedded shader set is compiled to -dir. With
// inputs, each file is compiled next to itself as <name>.spv, or to -o
// when a single input is given.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spacegps/transfer-planner/internal/shaders"
)

var (
	output = flag.String("o", "", "output file for a single input (default: alongside the input)")
	outDir = flag.String("dir", "spv", "output directory for the embedded shader set")
	debug  = flag.Bool("debug", false, "include debug info in the SPIR-V output")
	list   = flag.Bool("list", false, "list embedded shader modules and exit")
)

func main() {
	flag.Usage = usage
	flag.Parse()

	if *list {
		for _, name := range shaders.Names() {
			fmt.Println(name)
		}
		return
	}

	args := flag.Args()
	if len(args) == 0 {
		paths, err := shaders.CompileAll(*outDir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		for _, p := range paths {
			fmt.Printf("wrote %s\n", p)
		}
		return
	}

	if *output != "" && len(args) > 1 {
		fmt.Fprintln(os.Stderr, "Error: -o only applies to a single input")
		os.Exit(1)
	}

	for _, input := range args {
		if err := compileFile(input, *output, *debug); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s: %v\n", input, err)
			os.Exit(1)
		}
	}
}

func compileFile(input, output string, debug bool) error {
	source, err := os.ReadFile(input)
	if err != nil {
		return err
	}

	spirv, err := shaders.CompileSource(string(source), debug)
	if err != nil {
		return err
	}

	if output == "" {
		output = strings.TrimSuffix(input, filepath.Ext(input)) + ".spv"
	}
	if err := os.WriteFile(output, spirv, 0o644); err != nil {
		return err
	}
	fmt.Printf("wrote %s (%d bytes)\n", output, len(spirv))
	return nil
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: shaderc [options] [input.wgsl ...]\n\n")
	fmt.Fprintf(os.Stderr, "With no inputs the embedded shader set is compiled to -dir.\n\nOptions:\n")
	flag.PrintDefaults()
}
