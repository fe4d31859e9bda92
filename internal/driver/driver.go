// Package driver wires source loading, resolution, and object emission
// into the single entry point the CLI calls. It is the thinnest possible
// adaptation of the teacher's runAssembleFile: load the file, run the
// pipeline, write the result.
package driver

import (
	"fmt"

	"github.com/slovoasm/slovoasm/internal/debugcontext"
	"github.com/slovoasm/slovoasm/internal/objwriter"
	"github.com/slovoasm/slovoasm/internal/resolver"
	"github.com/slovoasm/slovoasm/internal/sourceload"
)

// Options configures a single assembly run.
type Options struct {
	SourcePath string
	OutputPath string
	// Strict enables immediate/displacement range checking instead of
	// silent masking (SPEC_FULL.md §7).
	Strict bool
}

// Progress receives human-readable progress lines as the pipeline runs.
// The CLI wires this to cobra's Println; tests can pass a no-op.
type Progress func(format string, args ...any)

// Assemble runs the full pipeline for a single source file: load, resolve,
// write. It returns the populated debug context alongside any error so
// callers can inspect recorded diagnostics even on failure.
func Assemble(opts Options, progress Progress) (*debugcontext.DebugContext, error) {
	if progress == nil {
		progress = func(string, ...any) {}
	}

	debug := debugcontext.NewDebugContext(opts.SourcePath)
	debug.SetPhase("load")

	progress("Начинаю сборку %s..", opts.SourcePath)
	src, err := sourceload.Load(opts.SourcePath)
	if err != nil {
		debug.Error(debug.Loc(0, 0), err.Error())
		return debug, fmt.Errorf("driver: loading source: %w", err)
	}

	res := resolver.New(resolver.Options{Strict: opts.Strict}, sourceload.ReadInclude, debug)

	result, err := res.Resolve(src.Content())
	if err != nil {
		if !debug.HasErrors() {
			debug.Error(debug.Loc(0, 0), err.Error())
		}
		return debug, fmt.Errorf("driver: resolving %s: %w", src.Path(), err)
	}

	debug.SetPhase("write")
	progress("Записываю объектный файл %s..", opts.OutputPath)
	if err := objwriter.Write(opts.OutputPath, result.Code); err != nil {
		debug.Error(debug.Loc(0, 0), err.Error())
		return debug, fmt.Errorf("driver: writing object: %w", err)
	}

	progress("Готово: %d байт в %s.", len(result.Code), opts.OutputPath)
	return debug, nil
}
