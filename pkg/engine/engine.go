// Package engine provides the Lisp evaluation engine for sdfkit scenes.
// It wraps zygomys in a sandboxed environment and produces a Scene of
// named signed distance volumes from user source code.
package engine

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/chazu/sdfkit/pkg/logging"
	"github.com/chazu/sdfkit/pkg/scene"
	zygo "github.com/glycerine/zygomys/zygo"
	"github.com/sirupsen/logrus"
)

var log = logging.NamedLogger("engine")

// EvalError represents a non-fatal error encountered during evaluation,
// such as a parse error or a runtime error in user code.
type EvalError struct {
	Line    int
	Col     int
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// Options controls how builtins sample new volumes.
type Options struct {
	// Dim is the default samples per axis for shapes, meshes, booleans
	// and sweeps.
	Dim int
	// Padding is the default fraction of each axis extent added around a
	// shape or mesh.
	Padding float64
	// Resolution is the default grid size for booleans and sweeps.
	Resolution int
	// LoadRoot is the directory load-mesh resolves paths against. Empty
	// disables load-mesh.
	LoadRoot string
	// Workers bounds the goroutines filling each grid. Zero means
	// GOMAXPROCS.
	Workers int
	// TimeSteps is the default sweep step count.
	TimeSteps int
	// Timeout is the hard limit for a single evaluation.
	Timeout time.Duration
}

// DefaultOptions returns the options used by NewEngine.
func DefaultOptions() Options {
	return Options{
		Dim:        scene.DefaultDim,
		Padding:    scene.DefaultPadding,
		Resolution: scene.DefaultDim,
		TimeSteps:  100,
		Timeout:    EvalTimeout,
	}
}

// Engine wraps the zygomys interpreter for scene evaluation.
// It is safe for concurrent use; each call to Evaluate creates a fresh
// sandboxed environment for determinism.
type Engine struct {
	mu         sync.Mutex
	generation uint64
	opts       Options
}

// NewEngine creates a new Engine instance with DefaultOptions.
func NewEngine() *Engine {
	return NewEngineWithOptions(DefaultOptions())
}

// NewEngineWithOptions creates an Engine. Zero fields fall back to
// DefaultOptions.
func NewEngineWithOptions(opts Options) *Engine {
	def := DefaultOptions()
	if opts.Dim <= 0 {
		opts.Dim = def.Dim
	}
	if opts.Padding < 0 {
		opts.Padding = def.Padding
	}
	if opts.Resolution <= 0 {
		opts.Resolution = opts.Dim
	}
	if opts.TimeSteps <= 0 {
		opts.TimeSteps = def.TimeSteps
	}
	if opts.Timeout <= 0 {
		opts.Timeout = def.Timeout
	}
	return &Engine{opts: opts}
}

// Options returns the engine's evaluation options.
func (e *Engine) Options() Options {
	return e.opts
}

// Evaluate takes Lisp source code and produces a new Scene.
// Each call creates a fresh zygomys sandbox for deterministic evaluation.
//
// Return semantics:
//   - On success: returns scene + nil errors + nil error
//   - On parse/eval failure: returns nil scene + eval errors + nil error
//   - On fatal failure (timeout, panic, superseded): returns nil + nil + error
func (e *Engine) Evaluate(source string) (*scene.Scene, []EvalError, error) {
	return e.EvaluateContext(context.Background(), source)
}

// EvaluateContext is Evaluate with a parent context. Cancelling ctx, a
// timeout, or a newer evaluation stops any grid computation in progress.
func (e *Engine) EvaluateContext(ctx context.Context, source string) (*scene.Scene, []EvalError, error) {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	ch := make(chan evalResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()

		sc, evalErrs, err := e.evaluate(ctx, source, gen)
		ch <- evalResult{scene: sc, errors: evalErrs, err: err}
	}()

	start := time.Now()
	sc, evalErrs, err := waitWithTimeout(ctx, ch, gen, e.opts.Timeout, &e.mu, &e.generation)
	log.WithFields(logrus.Fields{
		"generation": gen,
		"elapsed":    time.Since(start),
		"errors":     len(evalErrs),
	}).Debug("evaluated scene")
	return sc, evalErrs, err
}

// evaluate performs the actual zygomys evaluation in a fresh sandbox.
func (e *Engine) evaluate(ctx context.Context, source string, gen uint64) (*scene.Scene, []EvalError, error) {
	sc := scene.New()
	sc.Version = gen
	sc.Defaults = scene.Defaults{Dim: e.opts.Dim, Padding: e.opts.Padding}

	// Empty source is a valid program that produces an empty scene.
	if strings.TrimSpace(source) == "" {
		return sc, nil, nil
	}

	// Create a fresh sandboxed zygomys environment.
	// Sandbox mode prevents user code from accessing the filesystem or syscalls.
	env := zygo.NewZlispSandbox()
	defer env.Stop()

	registerBuiltins(env, &build{ctx: ctx, opts: e.opts, scene: sc})

	// Load and compile the source string into bytecode.
	err := env.LoadString(preprocessSource(source))
	if err != nil {
		return nil, parseZygomysError(err), nil
	}

	// Execute the compiled bytecode.
	_, err = env.Run()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, nil, ctxErr
		}
		return nil, parseZygomysError(err), nil
	}

	return sc, nil, nil
}

// linePattern matches zygomys error messages that include "Error on line N: ..."
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

// linePatternShort matches simpler "line N: ..." patterns.
var linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)

// parseZygomysError converts a zygomys error into one or more EvalError values.
// It attempts to extract line number information from the error message.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()

	// zygomys formats parse errors as "Error on line N: <details>\n"
	for _, re := range []*regexp.Regexp{linePattern, linePatternShort} {
		if m := re.FindStringSubmatch(msg); m != nil {
			line, _ := strconv.Atoi(m[1])
			return []EvalError{{
				Line:    line,
				Message: strings.TrimSpace(m[2]),
			}}
		}
	}

	// Fallback: no line info available.
	return []EvalError{{
		Message: strings.TrimSpace(msg),
	}}
}
