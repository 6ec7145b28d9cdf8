// Package commands implements the concrete handlers behind every name
// in pkg/eapi's command table: the install-destination family
// (into/insinto/dobin/doins/dodoc/dosym/doheader/doenvd/doconfd/doinitd/
// fperms), the build family (unpack/econf), the USE-query family
// (use/usev/usex/use_enable/use_with/has), inherit, and die/assert/
// nonfatal.
//
// Grounded on the shell/commands/*.rs handler files under
// original_source/crates/pkgcraft/src/ for argument shapes and default
// behavior, adapted to this codebase's BuildState instead of mutating a
// live filesystem (spec.md's Non-goals exclude installing to a live
// system, so install commands record intent to BuildState.Installed
// rather than performing file I/O).
package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/obentoo/ebuildkit/pkg/buildstate"
	"github.com/obentoo/ebuildkit/pkg/shell"
)

// Table returns the default handler set wiring every command name
// pkg/eapi's registry knows about to its implementation here.
func Table() shell.HandlerTable {
	return shell.HandlerTable{
		"into":       into,
		"insinto":    insinto,
		"dobin":      dobin,
		"doins":      doins,
		"dodoc":      dodoc,
		"dosym":      dosym,
		"doheader":   doheader,
		"doenvd":     doenvd,
		"doconfd":    doconfd,
		"doinitd":    doinitd,
		"fperms":     fperms,
		"unpack":     unpack,
		"econf":      econf,
		"use":        use,
		"usev":       usev,
		"usex":       usex,
		"use_enable": useEnable,
		"use_with":   useWith,
		"has":        has,
		"inherit":    inherit,
		"die":        die,
		"assert":     assert,
	}
}

// nonfatal itself has no handler here: it needs to recursively dispatch
// its wrapped command, which requires the Runtime, not just BuildState —
// pkg/shell's Invoke special-cases the name and calls back into itself
// instead.

// --- install-destination family ---

func into(ctx context.Context, bs *buildstate.BuildState, args []string) (int, error) {
	if len(args) != 1 {
		return 1, fmt.Errorf("into: expected exactly one argument")
	}
	opts := bs.FileOpts()
	opts.Dest = args[0]
	bs.SetFileOpts(opts)
	return 0, nil
}

func insinto(ctx context.Context, bs *buildstate.BuildState, args []string) (int, error) {
	if len(args) != 1 {
		return 1, fmt.Errorf("insinto: expected exactly one argument")
	}
	opts := bs.FileOpts()
	opts.Dest = args[0]
	bs.SetFileOpts(opts)
	return 0, nil
}

func dobin(ctx context.Context, bs *buildstate.BuildState, args []string) (int, error) {
	return installFiles(bs, "dobin", "/usr/bin", args, "0755")
}

func doins(ctx context.Context, bs *buildstate.BuildState, args []string) (int, error) {
	if len(args) == 0 {
		return 1, fmt.Errorf("doins: no source files given")
	}
	opts := bs.FileOpts()
	mode := opts.FileMode
	if mode == "" {
		mode = "0644"
	}
	bs.RecordInstall(buildstate.InstallAction{Command: "doins", Sources: args, Dest: opts.Dest, Mode: mode})
	return 0, nil
}

func dodoc(ctx context.Context, bs *buildstate.BuildState, args []string) (int, error) {
	if len(args) == 0 {
		return 1, fmt.Errorf("dodoc: no source files given")
	}
	opts := bs.FileOpts()
	dest := "/usr/share/doc/" + bs.Package.Package
	if opts.DocDest != "" {
		dest += "/" + opts.DocDest
	}
	bs.RecordInstall(buildstate.InstallAction{Command: "dodoc", Sources: args, Dest: dest, Mode: "0644"})
	return 0, nil
}

func dosym(ctx context.Context, bs *buildstate.BuildState, args []string) (int, error) {
	if len(args) != 2 {
		return 1, fmt.Errorf("dosym: expected a target and a link name")
	}
	bs.RecordInstall(buildstate.InstallAction{Command: "dosym", Sources: []string{args[0]}, Dest: args[1]})
	return 0, nil
}

func doheader(ctx context.Context, bs *buildstate.BuildState, args []string) (int, error) {
	return installFiles(bs, "doheader", "/usr/include", args, "0644")
}

func doenvd(ctx context.Context, bs *buildstate.BuildState, args []string) (int, error) {
	return installFiles(bs, "doenvd", "/etc/env.d", args, "0644")
}

func doconfd(ctx context.Context, bs *buildstate.BuildState, args []string) (int, error) {
	return installFiles(bs, "doconfd", "/etc/conf.d", args, "0644")
}

func doinitd(ctx context.Context, bs *buildstate.BuildState, args []string) (int, error) {
	return installFiles(bs, "doinitd", "/etc/init.d", args, "0755")
}

func installFiles(bs *buildstate.BuildState, name, dest string, args []string, defaultMode string) (int, error) {
	if len(args) == 0 {
		return 1, fmt.Errorf("%s: no source files given", name)
	}
	bs.RecordInstall(buildstate.InstallAction{Command: name, Sources: args, Dest: dest, Mode: defaultMode})
	return 0, nil
}

func fperms(ctx context.Context, bs *buildstate.BuildState, args []string) (int, error) {
	if len(args) < 2 {
		return 1, fmt.Errorf("fperms: expected a mode and at least one path")
	}
	opts := bs.FileOpts()
	opts.FileMode = args[0]
	bs.SetFileOpts(opts)
	return 0, nil
}

// --- build family ---

func unpack(ctx context.Context, bs *buildstate.BuildState, args []string) (int, error) {
	if len(args) == 0 {
		return 1, fmt.Errorf("unpack: no archives given")
	}
	caseInsensitive := bs.EAPI.Has("unpack-case-insensitive")
	for _, a := range args {
		name := a
		if caseInsensitive {
			name = strings.ToLower(name)
		}
		if !hasKnownArchiveSuffix(name) {
			return 1, fmt.Errorf("unpack: unrecognized archive format: %s", a)
		}
	}
	return 0, nil
}

var archiveSuffixes = []string{
	".tar.gz", ".tgz", ".tar.bz2", ".tbz2", ".tar.xz", ".txz",
	".tar.zst", ".tar.lz", ".tar", ".zip", ".gz", ".bz2", ".xz", ".Z",
}

func hasKnownArchiveSuffix(name string) bool {
	for _, suf := range archiveSuffixes {
		if strings.HasSuffix(name, suf) {
			return true
		}
	}
	return false
}

// econf contributes the active EAPI's default configure arguments
// (ConfigDefaults) ahead of caller-supplied ones, mirroring the "`./
// configure --help` advertises them" design note in spec.md §4.6 —
// simplified here to "the EAPI always contributes them", since probing
// a real configure script is outside the core's pure-function contract.
func econf(ctx context.Context, bs *buildstate.BuildState, args []string) (int, error) {
	defaults := bs.EAPI.ConfigDefaults()
	final := make([]string, 0, len(defaults)+len(args))
	final = append(final, defaults...)
	final = append(final, args...)
	bs.Vars["__econf_args"] = strings.Join(final, " ")
	return 0, nil
}

// --- USE-query family ---

func use(ctx context.Context, bs *buildstate.BuildState, args []string) (int, error) {
	if len(args) != 1 {
		return 1, fmt.Errorf("use: expected exactly one flag")
	}
	flag := args[0]
	negate := strings.HasPrefix(flag, "!")
	if negate {
		flag = flag[1:]
	}
	enabled := bs.UseEnabled(flag)
	if negate {
		enabled = !enabled
	}
	if enabled {
		return 0, nil
	}
	return 1, nil
}

func usev(ctx context.Context, bs *buildstate.BuildState, args []string) (int, error) {
	if len(args) == 0 {
		return 1, fmt.Errorf("usev: expected a flag argument")
	}
	status, err := use(ctx, bs, args[:1])
	if err != nil {
		return status, err
	}
	if status == 0 {
		fmt.Fprintln(bs.Stdout, strings.TrimPrefix(args[0], "!"))
	}
	return status, nil
}

func usex(ctx context.Context, bs *buildstate.BuildState, args []string) (int, error) {
	if len(args) == 0 {
		return 1, fmt.Errorf("usex: expected a flag argument")
	}
	trueStr, falseStr := "yes", "no"
	if len(args) > 1 {
		trueStr = args[1]
	}
	if len(args) > 2 {
		falseStr = args[2]
	}
	status, err := use(ctx, bs, args[:1])
	if err != nil {
		return status, err
	}
	if status == 0 {
		fmt.Fprintln(bs.Stdout, trueStr)
	} else {
		fmt.Fprintln(bs.Stdout, falseStr)
	}
	return 0, nil
}

func useEnable(ctx context.Context, bs *buildstate.BuildState, args []string) (int, error) {
	return useConditionalFlag(bs, args, "--enable-", "--disable-")
}

func useWith(ctx context.Context, bs *buildstate.BuildState, args []string) (int, error) {
	return useConditionalFlag(bs, args, "--with-", "--without-")
}

func useConditionalFlag(bs *buildstate.BuildState, args []string, onPrefix, offPrefix string) (int, error) {
	if len(args) == 0 {
		return 1, fmt.Errorf("expected a flag argument")
	}
	flag := args[0]
	optName := flag
	if len(args) > 1 {
		optName = args[1]
	}
	value := ""
	if len(args) > 2 {
		value = "=" + args[2]
	}
	if bs.UseEnabled(flag) {
		fmt.Fprintln(bs.Stdout, onPrefix+optName+value)
		return 0, nil
	}
	fmt.Fprintln(bs.Stdout, offPrefix+optName)
	return 0, nil
}

func has(ctx context.Context, bs *buildstate.BuildState, args []string) (int, error) {
	if len(args) < 1 {
		return 1, fmt.Errorf("has: expected a needle and zero or more haystack items")
	}
	needle := args[0]
	for _, candidate := range args[1:] {
		if candidate == needle {
			return 0, nil
		}
	}
	return 1, nil
}

// --- eclass inheritance ---

func inherit(ctx context.Context, bs *buildstate.BuildState, args []string) (int, error) {
	if len(args) == 0 {
		return 1, fmt.Errorf("inherit: expected at least one eclass name")
	}
	for _, eclass := range args {
		bs.Inherit(eclass)
	}
	return 0, nil
}

// --- error signalling ---

func die(ctx context.Context, bs *buildstate.BuildState, args []string) (int, error) {
	nonfatalFlag := false
	rest := args
	if len(rest) > 0 && rest[0] == "-n" {
		nonfatalFlag = true
		rest = rest[1:]
	}
	msg := strings.Join(rest, " ")
	if msg == "" {
		msg = "(no error message)"
	}
	if nonfatalFlag && bs.Nonfatal && bs.EAPI.Has("nonfatal-die") {
		fmt.Fprintln(bs.Stderr, msg)
		return 1, nil
	}
	return 1, &shell.Bail{Message: msg}
}

// assert dies when bs.Vars["__pipestatus"] (space-separated exit codes)
// holds a non-zero entry. The shell runtime never sets that variable, so
// under pkg/shell `assert` always returns 0; pipeline failures are not
// detected.
func assert(ctx context.Context, bs *buildstate.BuildState, args []string) (int, error) {
	statuses := strings.Fields(bs.Vars["__pipestatus"])
	failed := false
	for _, s := range statuses {
		if s != "0" {
			failed = true
			break
		}
	}
	if !failed {
		return 0, nil
	}
	return die(ctx, bs, args)
}

