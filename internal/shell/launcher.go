package shell

import (
	"context"
	"fmt"
	"io"
	"os/exec"

	"github.com/sirupsen/logrus"
)

// IOBindings are the three standard streams a stage (builtin or external
// program) reads and writes. They stand in for the file descriptors the
// original forked children inherited and dup2'd.
type IOBindings struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// pipeableBuiltins names the built-ins allowed to appear as a non-final or
// non-initial pipeline stage; spec.md limits this set deliberately (a
// pipeable built-in's output must be capturable the same way a child
// process's stdout is).
var pipeableBuiltins = map[string]bool{
	"pwd":  true,
	"echo": true,
	"jobs": true,
}

// Launcher runs a parsed Pipeline to completion. Go does not expose a raw
// fork, so each stage is instead an os/exec.Cmd (for external programs) or
// an in-process call (for pipeable built-ins), chained through io.Pipe the
// way mmichie-gosh's pipeline executor wires multi-stage pipelines — the
// idiomatic Go equivalent of the original's pipe()+fork()+dup2() sequence.
type Launcher struct {
	opener FileOpener
	logger stageLogger
}

// stageLogger is a narrow logging surface so Launcher does not need to
// import the concrete logger type just to accept nil in tests.
type stageLogger interface {
	Debug(msg string, fields logrus.Fields)
}

// NewLauncher builds a Launcher. opener may be &DefaultFileOpener{} in
// production or a fake in tests; logger may be nil.
func NewLauncher(opener FileOpener, logger stageLogger) *Launcher {
	return &Launcher{opener: opener, logger: logger}
}

func (l *Launcher) logDebug(msg string, fields logrus.Fields) {
	if l.logger != nil {
		l.logger.Debug(msg, fields)
	}
}

// stageIO holds, for one pipeline stage, the reader it consumes and the
// writer it produces into, plus the writer's Close if it is a pipe end
// that must be closed to signal EOF downstream once the stage finishes.
type stageIO struct {
	stdin      io.Reader
	stdout     io.Writer
	closeWrite func() error
}

// Run executes p against base's streams and sh's environment/job table.
// It returns the first stage failure encountered, or nil if every
// foreground stage exited zero (backgrounded pipelines always return nil
// once every stage has started).
func (l *Launcher) Run(ctx context.Context, p Pipeline, sh *Shell, base IOBindings) error {
	if p.Empty() {
		return nil
	}

	n := len(p.Commands)
	redirs := stageRedirects(p.Redirections, n)
	stageIOs := make([]stageIO, n)

	var openedFiles []io.Closer
	closeOpened := func() {
		for _, c := range openedFiles {
			c.Close()
		}
	}

	stageIOs[0].stdin = base.Stdin
	for i := 0; i < n; i++ {
		if r := redirs[i].read; r != nil {
			f, err := l.opener.OpenRead(r.Target)
			if err != nil {
				fmt.Fprintf(base.Stderr, "%s: %v\n", r.Target, err)
				closeOpened()
				return err
			}
			openedFiles = append(openedFiles, f)
			stageIOs[i].stdin = f
		}

		switch {
		case i < n-1:
			pr, pw := io.Pipe()
			stageIOs[i].stdout = pw
			stageIOs[i].closeWrite = pw.Close
			stageIOs[i+1].stdin = pr
		case redirs[i].write != nil:
			w := redirs[i].write
			f, err := l.opener.OpenWrite(w.Target, writeFlags(w.Operator), redirectFileMode)
			if err != nil {
				fmt.Fprintf(base.Stderr, "%s: %v\n", w.Target, err)
				closeOpened()
				return err
			}
			openedFiles = append(openedFiles, f)
			stageIOs[i].stdout = f
		case p.Background:
			stageIOs[i].stdout = io.Discard
		default:
			stageIOs[i].stdout = base.Stdout
		}
	}

	type started struct {
		pid  int
		wait func() error
	}
	runs := make([]started, n)

	for i, cmd := range p.Commands {
		argv := make([]string, len(cmd))
		for j, word := range cmd {
			argv[j] = sh.Env.Expand(word)
		}
		if len(argv) == 0 {
			runs[i] = started{wait: func() error { return nil }}
			continue
		}

		bindings := IOBindings{Stdin: stageIOs[i].stdin, Stdout: stageIOs[i].stdout, Stderr: base.Stderr}
		closeWrite := stageIOs[i].closeWrite

		if RunsInParent(argv[0]) {
			// A parent-only built-in (cd, set, exit, quit) has no process to
			// fork, so it cannot consume piped input; it runs synchronously,
			// right here, and only its declared stage output (if any) is
			// honored before the pipe is closed for the next stage.
			fn := sh.builtins[argv[0]]
			args := argv[1:]
			runErr := fn(args, bindings, sh)
			if closeWrite != nil {
				closeWrite()
			}
			runs[i] = started{wait: func() error { return runErr }}
			continue
		}

		if pipeableBuiltins[argv[0]] {
			fn := sh.builtins[argv[0]]
			args := argv[1:]
			runs[i] = started{wait: func() error {
				err := fn(args, bindings, sh)
				if closeWrite != nil {
					closeWrite()
				}
				return err
			}}
			continue
		}

		path, ok := sh.Lookup(argv[0])
		if !ok {
			fmt.Fprintf(base.Stderr, "Could not find %s\n", argv[0])
			if closeWrite != nil {
				closeWrite()
			}
			runs[i] = started{wait: func() error { return fmt.Errorf("%s: not found", argv[0]) }}
			continue
		}

		extCmd := exec.CommandContext(ctx, path, argv[1:]...)
		extCmd.Args = argv
		extCmd.Stdin = bindings.Stdin
		extCmd.Stdout = bindings.Stdout
		extCmd.Stderr = bindings.Stderr

		if err := extCmd.Start(); err != nil {
			fmt.Fprintf(base.Stderr, "Could not find %s\n", argv[0])
			if closeWrite != nil {
				closeWrite()
			}
			runs[i] = started{wait: func() error { return err }}
			continue
		}

		l.logDebug("forked stage", logrus.Fields{"argv0": argv[0], "pid": extCmd.Process.Pid})
		runs[i] = started{pid: extCmd.Process.Pid, wait: func() error {
			err := extCmd.Wait()
			if closeWrite != nil {
				closeWrite()
			}
			return err
		}}
	}

	if p.Background {
		lastExpanded := expandedArgv(p.Commands[n-1], sh)
		lastArgv0 := ""
		if len(lastExpanded) > 0 {
			lastArgv0 = lastExpanded[0]
		}
		label := lastArgv0
		waitAll := func() error {
			var first error
			for _, r := range runs {
				if err := r.wait(); err != nil && first == nil {
					first = err
				}
			}
			closeOpened()
			return first
		}
		if _, ok := sh.Jobs.Add(runs[n-1].pid, label, waitAll); ok {
			fmt.Fprintf(base.Stdout, "Running %s in background.\n", lastArgv0)
		}
		return nil
	}

	var first error
	for _, r := range runs {
		if err := r.wait(); err != nil && first == nil {
			first = err
		}
	}
	closeOpened()
	return first
}

func expandedArgv(cmd SimpleCommand, sh *Shell) []string {
	out := make([]string, len(cmd))
	for i, w := range cmd {
		out[i] = sh.Env.Expand(w)
	}
	return out
}
