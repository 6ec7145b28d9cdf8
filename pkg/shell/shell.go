// Package shell implements ShellRuntime (spec.md C7): an embedded POSIX
// shell that sources ebuilds and eclasses, dispatching the active
// EAPI's command table as shell built-ins and tracking scope and the
// nonfatal flag along the way. The runtime does not accumulate
// incremental variables: an assignment from an eclass or ebuild
// replaces the previous value.
//
// The shell interpreter itself is mvdan.cc/sh/v3 (syntax + interp),
// wired via interp.ExecHandler the way a host embeds a scripting
// language rather than reimplementing one; this is the same
// "delegate to a real library for the hard, general-purpose part"
// choice pkg/parser makes for tokenization with participle.
package shell

import (
	"context"
	"fmt"
	"strings"

	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"

	"github.com/obentoo/ebuildkit/pkg/buildstate"
	"github.com/obentoo/ebuildkit/pkg/eapi"
)

// Bail is the error `die` raises: it unwinds the current source/phase,
// discarding subshell-local state, per spec.md §4.7.
type Bail struct {
	Message string
}

func (b *Bail) Error() string {
	if b.Message == "" {
		return "(no error message)"
	}
	return b.Message
}

// CommandDisabled is returned when a command name isn't in the active
// EAPI's table at all.
type CommandDisabled struct {
	Name string
}

func (e *CommandDisabled) Error() string { return fmt.Sprintf("%s: disabled in EAPI", e.Name) }

// ScopeDisabled is returned when a command exists but isn't permitted in
// the currently active scope.
type ScopeDisabled struct {
	Name  string
	Scope eapi.Scope
}

func (e *ScopeDisabled) Error() string {
	return fmt.Sprintf("%s: disabled in %s scope", e.Name, e.Scope)
}

// InvalidEbuild marks a structural ebuild problem unrelated to any one
// command (a missing mandatory variable, an unparseable metadata value).
type InvalidEbuild struct {
	Reason string
}

func (e *InvalidEbuild) Error() string { return "invalid ebuild: " + e.Reason }

// PkgBuildFailed wraps a phase's terminal failure, naming which phase
// and why, once a Bail has propagated all the way out of the driver.
type PkgBuildFailed struct {
	Phase  eapi.Phase
	Reason string
}

func (e *PkgBuildFailed) Error() string {
	return fmt.Sprintf("phase %s failed: %s", e.Phase, e.Reason)
}

// Handler implements one command's behavior: read/mutate bs, optionally
// write to bs.Stdout/Stderr, and return a POSIX-style exit status or an
// error. A non-nil error is always treated as failure regardless of the
// returned status.
type Handler func(ctx context.Context, bs *buildstate.BuildState, args []string) (status int, err error)

// HandlerTable maps command name to its implementation. internal/commands
// builds the default table; tests and alternate front-ends may substitute
// their own.
type HandlerTable map[string]Handler

// Runtime embeds the POSIX shell interpreter and exposes the active
// EAPI's commands to it as built-ins, per spec.md §4.7. One Runtime
// serves one build at a time: it is not reentrant, matching the
// embedded interpreter's own single-threaded contract (spec.md §5).
type Runtime struct {
	state    *buildstate.BuildState
	handlers HandlerTable
	runner   *interp.Runner

	// pipestatus is not written or read by the runtime; pipeline exit
	// statuses are not recorded anywhere, and `assert` does not see them.
	pipestatus []int
}

// New constructs a Runtime bound to bs, dispatching through handlers for
// any command name present in bs.EAPI's command table.
func New(bs *buildstate.BuildState, handlers HandlerTable) (*Runtime, error) {
	rt := &Runtime{state: bs, handlers: handlers}

	runner, err := interp.New(
		interp.StdIO(nil, bs.Stdout, bs.Stderr),
		interp.ExecHandlers(func(next interp.ExecHandlerFunc2) interp.ExecHandlerFunc2 {
			return rt.execHandler(next)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("shell: constructing interpreter: %w", err)
	}
	rt.runner = runner
	return rt, nil
}

// execHandler intercepts every command invocation: commands in the
// active EAPI's table are dispatched to our Handler set; anything else
// falls through to the real interpreter (external programs, shell
// builtins like `cd`/`echo`/`[`).
func (rt *Runtime) execHandler(next interp.ExecHandlerFunc2) interp.ExecHandlerFunc2 {
	return func(ctx context.Context, args []string) error {
		if len(args) == 0 {
			return next(ctx, args)
		}
		name := args[0]
		if rt.state.EAPI.Commands().Lookup(name) == nil && !eapi.IsKnownCommandName(name) {
			return next(ctx, args)
		}
		_, err := rt.dispatch(ctx, args[0], args[1:])
		return err
	}
}

// Invoke runs one of the active EAPI's commands directly, outside of
// shell sourcing; the default phase implementations in pkg/phase use
// this to drive `unpack`, `econf`, and friends exactly as if the ebuild
// had called them, going through the same scope and die/nonfatal rules
// as every other invocation (spec.md §4.9 "default implementations use
// the registered commands"). Unlike execHandler's return value, this is
// a plain (status, error) pair with no interp.ExitStatus wrapping, since
// callers here are not the shell interpreter itself.
func (rt *Runtime) Invoke(ctx context.Context, name string, args []string) (int, error) {
	cmd := rt.state.EAPI.Commands().Lookup(name)
	if cmd == nil {
		return 1, &CommandDisabled{Name: name}
	}
	if !cmd.Scopes.Allows(rt.state.Scope) {
		return 1, &ScopeDisabled{Name: name, Scope: rt.state.Scope}
	}
	// `nonfatal` needs to recursively dispatch its wrapped command, which
	// a plain Handler (ctx, *BuildState, args) has no way to do — it
	// never sees the Runtime. Handled here instead of in the handler
	// table, the one command whose semantics are "run another command",
	// not "compute a result from BuildState".
	if name == "nonfatal" {
		return rt.invokeNonfatal(ctx, args)
	}
	h, ok := rt.handlers[name]
	if !ok {
		return 1, fmt.Errorf("shell: EAPI registers %q but no handler is wired for it", name)
	}
	status, err := h(ctx, rt.state, args)
	if err != nil {
		if bail, ok := err.(*Bail); ok {
			return status, bail
		}
		if !cmd.DieOnError {
			return nonZero(status), nil
		}
		if rt.state.Nonfatal {
			fmt.Fprintln(rt.state.Stderr, err.Error())
			return 1, nil
		}
		return status, &Bail{Message: err.Error()}
	}
	return status, nil
}

// invokeNonfatal implements the `nonfatal` built-in: set the nonfatal
// flag, run the wrapped command through the normal Invoke path (so it
// still gets its own scope check), and always restore the prior flag
// value, matching the real shell's "wraps a single command invocation"
// semantics (spec.md §4.7, §8 scenario 7).
func (rt *Runtime) invokeNonfatal(ctx context.Context, args []string) (int, error) {
	if len(args) == 0 {
		return 1, fmt.Errorf("nonfatal: expected a command to run")
	}
	prev := rt.state.Nonfatal
	rt.state.Nonfatal = true
	defer func() { rt.state.Nonfatal = prev }()
	return rt.Invoke(ctx, args[0], args[1:])
}

// dispatch is execHandler's entry point into command handling, wrapping
// Invoke's result into the interp.ExitStatus sentinel the interpreter
// expects from an ExecHandler.
func (rt *Runtime) dispatch(ctx context.Context, name string, args []string) (int, error) {
	status, err := rt.Invoke(ctx, name, args)
	if err != nil {
		if bail, ok := err.(*Bail); ok {
			return status, bail
		}
		return status, err
	}
	return status, interp.NewExitStatus(uint8(status))
}

func nonZero(status int) int {
	if status == 0 {
		return 1
	}
	return status
}

// SetScope changes the runtime's active scope, which every dispatched
// command checks against its allowed-scope set.
func (rt *Runtime) SetScope(s eapi.Scope) { rt.state.Scope = s }

// Source runs shell source text (an ebuild body or an eclass) under the
// runtime's current scope. A Bail from any command propagates as the
// returned error.
func (rt *Runtime) Source(ctx context.Context, name, source string) error {
	f, err := syntax.NewParser().Parse(strings.NewReader(source), name)
	if err != nil {
		return &InvalidEbuild{Reason: err.Error()}
	}
	if err := rt.runner.Run(ctx, f); err != nil {
		if bail, ok := err.(*Bail); ok {
			return bail
		}
		return err
	}
	return nil
}

// State returns the BuildState this runtime is bound to.
func (rt *Runtime) State() *buildstate.BuildState { return rt.state }

// DefinedFunc reports whether the sourced ebuild/eclass body declared a
// shell function named name, satisfying pkg/phase's FuncSource.
func (rt *Runtime) DefinedFunc(name string) bool {
	_, ok := rt.runner.Funcs[name]
	return ok
}

// CallFunc invokes a previously defined shell function by name.
func (rt *Runtime) CallFunc(ctx context.Context, name string) error {
	return rt.Source(ctx, name, name)
}
