package shell

import (
	"fmt"
	"os"
	"strings"

	"github.com/kballard/go-shellquote"
)

// Builtin is the signature shared by every in-process command. io binds the
// streams the command should read and write, which may be the shell's own
// streams or a file/pipe the launcher opened for this stage.
type Builtin func(args []string, io IOBindings, sh *Shell) error

// parentOnly names builtins that must run in the parent process because
// they mutate state a forked child could never propagate back: the working
// directory, the environment, or the REPL's running flag.
var parentOnly = map[string]bool{
	"cd":   true,
	"set":  true,
	"exit": true,
	"quit": true,
}

// RunsInParent reports whether name must be dispatched without forking.
func RunsInParent(name string) bool {
	return parentOnly[name]
}

func registerBuiltins() map[string]Builtin {
	return map[string]Builtin{
		"echo": builtinEcho,
		"pwd":  builtinPwd,
		"jobs": builtinJobs,
		"cd":   builtinCd,
		"set":  builtinSet,
		"exit": builtinExit,
		"quit": builtinExit,
	}
}

func builtinEcho(args []string, io IOBindings, sh *Shell) error {
	var out strings.Builder
	for _, a := range args {
		out.WriteString(sh.Env.Expand(a))
		out.WriteByte(' ')
	}
	fmt.Fprintln(io.Stdout, out.String())
	return nil
}

func builtinPwd(_ []string, io IOBindings, _ *Shell) error {
	dir, err := os.Getwd()
	if err != nil {
		fmt.Fprintln(io.Stderr, "pwd:", err)
		return nil
	}
	fmt.Fprintln(io.Stdout, dir)
	return nil
}

func builtinJobs(_ []string, io IOBindings, sh *Shell) error {
	sh.Jobs.Print(io.Stdout)
	return nil
}

// builtinCd implements "cd [path]": no argument goes to $HOME, a leading
// '~' expands to $HOME, anything else is used as-is. A failed chdir prints
// a diagnostic and does not touch the running flag.
func builtinCd(args []string, io IOBindings, sh *Shell) error {
	var target string
	switch {
	case len(args) == 0:
		target = os.Getenv("HOME")
	case strings.HasPrefix(args[0], "~"):
		target = os.Getenv("HOME") + strings.TrimPrefix(args[0], "~")
	default:
		target = args[0]
	}

	if err := os.Chdir(target); err != nil {
		fmt.Fprintln(io.Stderr, "Directory does not exist")
	}
	return nil
}

// builtinSet implements "set NAME=VALUE" / "set NAME". VALUE is expanded
// against the environment before assignment so "set X=$Y" substitutes Y's
// current value.
func builtinSet(args []string, io IOBindings, sh *Shell) error {
	if len(args) == 0 {
		fmt.Fprintln(io.Stderr, "set: usage: set NAME[=VALUE]")
		return nil
	}
	if len(args) > 1 {
		fmt.Fprintf(io.Stderr, "set: ignoring extra arguments: %s\n", shellquote.Join(args[1:]...))
	}
	if err := sh.Env.Set(args[0]); err != nil {
		fmt.Fprintln(io.Stderr, "set:", err)
	}
	return nil
}

// builtinExit backs both "exit" and "quit": it clears the running flag and
// signals the REPL loop to stop via ErrExit.
func builtinExit(_ []string, _ IOBindings, sh *Shell) error {
	sh.Running = false
	return ErrExit
}
