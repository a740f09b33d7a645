// Command ecmarun is a thin demonstration host for the engine module,
// grounded on the teacher's cmd package: a Cobra command that reads a
// script file off an afero filesystem, wires up an engine.Engine, and
// prints its result — the "external collaborator" host spec.md §1 keeps
// out of the core engine (CLI, env, file I/O, parsing).
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/go-ecma/engine/engine"
	"github.com/go-ecma/engine/realm"
	"github.com/go-ecma/engine/value"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	logger := logrus.New()

	root := &cobra.Command{
		Use:   "ecmarun [script]",
		Short: "Evaluate an ECMAScript-subset script file against the engine module",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScript(context.Background(), logger, afero.NewOsFs(), args[0])
		},
	}
	return root
}

// runScript reads path off fs (a trivial afero-backed "module loader" —
// SPEC_FULL.md §4.13 — since the engine itself never touches a
// filesystem), evaluates it, and prints the resulting value.
func runScript(ctx context.Context, logger *logrus.Logger, fs afero.Fs, path string) error {
	source, err := afero.ReadFile(fs, path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	opts, err := engine.LoadOptions("ECMA", nil)
	if err != nil {
		return fmt.Errorf("loading options: %w", err)
	}

	e := engine.New(opts, logger)
	e.SetParser(parseDemoScript)
	e.SetModuleLoader(func(specifier, referrer string) (string, error) {
		resolved := filepath.Join(filepath.Dir(referrer), specifier)
		data, err := afero.ReadFile(fs, resolved)
		if err != nil {
			return "", fmt.Errorf("resolving module %q from %q: %w", specifier, referrer, err)
		}
		return string(data), nil
	})
	installConsole(e, logger)

	evalCtx := ctx
	if opts.ExecutionTimeout > 0 {
		var cancel context.CancelFunc
		evalCtx, cancel = context.WithTimeout(ctx, opts.ExecutionTimeout)
		defer cancel()
	}

	result, err := e.Evaluate(evalCtx, string(source))
	if err != nil {
		return fmt.Errorf("evaluating %s: %w", path, err)
	}

	fmt.Println(displayResult(result))
	return nil
}

// installConsole registers minimal "console" and "print" host functions
// wired to logger, the
// ambient-logging half of the "ambient stack" SPEC_FULL.md §1 calls for
// even in a host demo that otherwise only exists to exercise the
// embedding API.
func installConsole(e *engine.Engine, logger *logrus.Logger) {
	consoleLog := func(r *realm.Realm, this value.Value, args []value.Value) (value.Value, error) {
		fields := make([]interface{}, 0, len(args))
		for _, a := range args {
			fields = append(fields, displayResult(a))
		}
		logger.Info(fields...)
		return value.Undefined, nil
	}
	// SetGlobal/SetGlobalFunction (spec.md §6) only install a single
	// binding each, not an object with methods, so "console" is exposed
	// as a bare callable rather than console.log(...) — enough for a
	// demo harness; a host wanting the usual object shape builds it
	// itself via the same realm.HostHandler access SetGlobalFunction
	// gives any handler.
	_ = e.SetGlobalFunction("console", consoleLog)
	_ = e.SetGlobalFunction("print", consoleLog)
}

func displayResult(v value.Value) string {
	switch {
	case v.IsUndefined():
		return "undefined"
	case v.IsNull():
		return "null"
	case v.IsString():
		return v.AsString()
	case v.IsBoolean():
		if v.AsBool() {
			return "true"
		}
		return "false"
	case v.IsNumber():
		return fmt.Sprintf("%v", v.AsNumber())
	case v.IsObject():
		return "[object]"
	default:
		return fmt.Sprintf("%v", v.Kind())
	}
}
