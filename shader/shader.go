// Package shader recompiles GXP shader programs into GLSL.
//
// Recompilation reconstructs typed variables from the program's
// parameter metadata, translates the USSE instruction stream into an
// intermediate module, and hands that module to the GLSL backend. It
// is a pure function of the program and options: concurrent
// recompilations share nothing but the logger.
//
// No recoverable failure aborts a recompilation. Undecodable
// instructions, unsupported parameter categories and unresolvable
// register accesses are logged and skipped, so a partially understood
// program still yields complete output for everything else.
package shader

import (
	"log/slog"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/gogpu/naga/glsl"
	"github.com/gogpu/naga/ir"

	"github.com/bentokun/Vita3K/gxp"
)

// Options configures a recompilation.
type Options struct {
	// LangVersion is the GLSL version to emit.
	LangVersion glsl.Version

	// Enable420Pack requests the 420pack layout extension on
	// desktop targets below 4.20.
	Enable420Pack bool

	// DumpModule logs the intermediate module, the disassembly
	// listing and the generated source at debug level.
	DumpModule bool

	// Logger receives diagnostics. Nil falls back to slog.Default.
	Logger *slog.Logger
}

// DefaultOptions returns the production configuration: GLSL 4.10 core
// with the packing extension.
func DefaultOptions() Options {
	return Options{
		LangVersion:   glsl.Version410,
		Enable420Pack: true,
	}
}

// TranslationReport summarizes one instruction stream translation.
type TranslationReport struct {
	// Instructions counts the words translated into the module.
	Instructions int

	// Skipped counts the words dropped as undecodable or
	// untranslatable.
	Skipped int

	// Disassembly lists every decoded instruction in source order.
	Disassembly []string
}

// entryName returns the stage's entry function name.
func entryName(t gxp.ProgramType) string {
	if t == gxp.Vertex {
		return "main_vs"
	}
	return "main_fs"
}

// Recompile translates a program to GLSL with the default options.
func Recompile(prog *gxp.Program, name string) (string, error) {
	return RecompileWithOptions(prog, name, DefaultOptions(), false)
}

// RecompileWithOptions translates a program to GLSL. forceDump
// overrides Options.DumpModule for this one call.
func RecompileWithOptions(prog *gxp.Program, name string, opts Options, forceDump bool) (string, error) {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	log = log.With("shader", name, "stage", prog.Type)

	module, report, err := BuildModule(prog, name, opts)
	if err != nil {
		return "", err
	}

	if opts.DumpModule || forceDump {
		log.Debug("disassembly", "listing", strings.Join(report.Disassembly, "\n"))
		log.Debug("intermediate module", "module", spew.Sdump(module))
	}

	source, _, err := glsl.Compile(module, glsl.Options{
		LangVersion: opts.LangVersion,
		EntryPoint:  entryName(prog.Type),
	})
	if err != nil {
		return "", &BackendAssemblyError{Err: err}
	}
	if opts.DumpModule || forceDump {
		log.Debug("generated GLSL", "source", source)
	}
	if report.Skipped > 0 {
		log.Warn("recompiled with skipped instructions", "skipped", report.Skipped)
	}
	return patch420Pack(source, opts), nil
}

// BuildModule runs reconstruction and translation without the backend,
// exposing the intermediate module for inspection and testing.
func BuildModule(prog *gxp.Program, name string, opts Options) (*ir.Module, *TranslationReport, error) {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	log = log.With("shader", name, "stage", prog.Type)

	b := newModuleBuilder()
	params := buildParameters(b, prog, log)

	t := newTranslator(b, params, log)
	t.translate(prog.Code)
	body := t.body

	appendEpilogue(b, prog, params, &body)

	stage := ir.StageVertex
	if prog.Type == gxp.Fragment {
		stage = ir.StageFragment
	}
	module := b.finish(entryName(prog.Type), stage, body)
	return module, &t.report, nil
}

// appendEpilogue composes the entry result struct from the output
// locals the translated code wrote into.
func appendEpilogue(b *moduleBuilder, prog *gxp.Program, params *shaderParams, body *[]ir.Statement) {
	if len(params.outputs) == 0 {
		*body = append(*body, ir.Statement{Kind: ir.StmtReturn{}})
		return
	}

	members := make([]ir.StructMember, 0, len(params.outputs))
	comps := make([]ir.ExpressionHandle, 0, len(params.outputs))
	var offset uint32
	for _, out := range params.outputs {
		binding := out.binding
		members = append(members, ir.StructMember{
			Name:    out.name,
			Type:    out.typ,
			Binding: &binding,
			Offset:  offset,
		})
		offset += out.count * 4
		comps = append(comps, b.expr(ir.ExprLocalVariable{Variable: out.local}))
	}

	structName := "VertexOutput"
	if prog.Type == gxp.Fragment {
		structName = "FragmentOutput"
	}
	resultType := b.typeHandle(structName, ir.StructType{Members: members, Span: offset})
	b.fn.Result = &ir.FunctionResult{Type: resultType}

	result := b.expr(ir.ExprCompose{Type: resultType, Components: comps})
	b.flushEmit(body)
	*body = append(*body, ir.Statement{Kind: ir.StmtReturn{Value: &result}})
}

// patch420Pack inserts the 420pack extension directive after the
// version line. The backend has no knob for it, and the emitted
// layout qualifiers rely on it below GLSL 4.20 on desktop.
func patch420Pack(source string, opts Options) string {
	if !opts.Enable420Pack || opts.LangVersion.ES {
		return source
	}
	idx := strings.IndexByte(source, '\n')
	if idx < 0 || !strings.HasPrefix(source, "#version") {
		return source
	}
	const directive = "#extension GL_ARB_shading_language_420pack : enable\n"
	return source[:idx+1] + directive + source[idx+1:]
}
