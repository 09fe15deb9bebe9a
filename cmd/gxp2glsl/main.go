// Command gxp2glsl recompiles a GXP shader program binary to GLSL.
//
// Usage:
//
//	gxp2glsl [options] <input.gxp>
//
// Examples:
//
//	gxp2glsl shader.gxp                  # Recompile to stdout
//	gxp2glsl -o shader.glsl shader.gxp   # Recompile to file
//	gxp2glsl -es -dump shader.gxp        # ES output, dump visible on stderr
//
// The debug dump is always forced on; -dump raises the stderr log
// level to debug so the dump records are actually printed.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gogpu/naga/glsl"

	"github.com/bentokun/Vita3K/gxp"
	"github.com/bentokun/Vita3K/shader"
)

var (
	output = flag.String("o", "", "output file (default: stdout)")
	es     = flag.Bool("es", false, "emit GLSL ES 3.00 instead of 4.10 core")
	dump   = flag.Bool("dump", false, "log debug diagnostics (module dump, disassembly, generated source)")
)

func main() {
	flag.Usage = usage
	flag.Parse()

	args := flag.Args()
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Error: no input file specified")
		usage()
		os.Exit(1)
	}

	inputPath := args[0]

	blob, err := os.ReadFile(inputPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading file: %v\n", err)
		os.Exit(1)
	}

	prog, err := gxp.Load(blob)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing program: %v\n", err)
		os.Exit(1)
	}

	opts := shader.DefaultOptions()
	if *es {
		opts.LangVersion = glsl.VersionES300
	}
	level := slog.LevelInfo
	if *dump {
		level = slog.LevelDebug
	}
	opts.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	name := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))

	// The dump is always forced here; -dump raises the stderr level so
	// the records become visible.
	source, err := shader.RecompileWithOptions(prog, name, opts, true)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Recompilation error: %v\n", err)
		os.Exit(1)
	}

	if *output != "" {
		if err := os.WriteFile(*output, []byte(source), 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Recompiled %s to %s (%d bytes)\n", inputPath, *output, len(source))
	} else {
		fmt.Print(source)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: gxp2glsl [options] <input.gxp>\n\n")
	fmt.Fprintf(os.Stderr, "Options:\n")
	flag.PrintDefaults()
	fmt.Fprintf(os.Stderr, "\nExamples:\n")
	fmt.Fprintf(os.Stderr, "  gxp2glsl shader.gxp                Recompile to stdout\n")
	fmt.Fprintf(os.Stderr, "  gxp2glsl -o shader.glsl shader.gxp Recompile to file\n")
	fmt.Fprintf(os.Stderr, "  gxp2glsl -es shader.gxp            Emit GLSL ES 3.00\n")
}
