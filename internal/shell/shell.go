package shell

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/kballard/go-shellquote"
	"github.com/sirupsen/logrus"

	"github.com/jhmcstanton/quash-go/internal/quashlog"
)

// ErrExit signals that a built-in asked the REPL loop to stop.
var ErrExit = errors.New("exit")

// Shell bundles every piece of state one interactive session needs: the
// environment/expander, the job table, the registered built-ins, and the
// launcher that runs external pipelines. Previous global-mutable-state
// designs (a package-level job array, a bare running flag) are folded into
// this single value so multiple Shells never interfere with each other.
type Shell struct {
	Out io.Writer
	Err io.Writer

	Running bool
	Env     Environment
	Jobs    *JobTable

	pathDirs []string
	builtins map[string]Builtin
	launcher *Launcher
	logger   *quashlog.Logger
}

// Config collects the knobs cmd/quash exposes as CLI flags.
type Config struct {
	JobCapacity int
	Logger      *quashlog.Logger
}

// New builds a Shell wired with the real file system and process
// environment. PATH is captured at construction time, matching the
// teacher's lookup strategy: later changes to $PATH are not picked up
// until a new Shell is built.
func New(out, errw io.Writer, cfg Config) *Shell {
	var dirs []string
	if path := os.Getenv("PATH"); path != "" {
		dirs = strings.Split(path, string(os.PathListSeparator))
	}

	capacity := cfg.JobCapacity
	if capacity <= 0 {
		capacity = 100
	}

	sh := &Shell{
		Out:      out,
		Err:      errw,
		Running:  true,
		pathDirs: dirs,
		builtins: registerBuiltins(),
		logger:   cfg.Logger,
	}
	sh.Jobs = NewJobTable(capacity, cfg.Logger)

	// cfg.Logger is a concrete *quashlog.Logger; passed through an untyped
	// nil so a caller that leaves it unset gets a true nil stageLogger
	// interface rather than a non-nil interface wrapping a nil pointer.
	var launcherLogger stageLogger
	if cfg.Logger != nil {
		launcherLogger = cfg.Logger
	}
	sh.launcher = NewLauncher(DefaultFileOpener{}, launcherLogger)
	return sh
}

// Lookup searches PATH for an executable named name, mirroring the
// teacher's permission-bit check.
func (s *Shell) Lookup(name string) (string, bool) {
	if strings.ContainsRune(name, os.PathSeparator) {
		if info, err := os.Stat(name); err == nil && info.Mode().IsRegular() && info.Mode()&0111 != 0 {
			return name, true
		}
		return "", false
	}

	for _, dir := range s.pathDirs {
		candidate := filepath.Join(dir, name)
		if info, err := os.Stat(candidate); err == nil {
			if info.Mode().IsRegular() && info.Mode()&0111 != 0 {
				return candidate, true
			}
		}
	}
	return "", false
}

// ExecuteLine lexes, parses, and runs one raw input line. It returns
// ErrExit when the line was "exit"/"quit", any parse error as-is (printed
// by the caller), or the launcher's reported failure.
func (s *Shell) ExecuteLine(ctx context.Context, line string, stdin io.Reader) error {
	tokens := Lex(line)
	pipeline, err := Parse(tokens)
	if err != nil {
		return err
	}
	if pipeline.Empty() {
		return nil
	}

	if s.logger != nil {
		stages := make([]string, len(pipeline.Commands))
		for i, c := range pipeline.Commands {
			stages[i] = shellquote.Join(c...)
		}
		s.logger.Debug("executing line", logrus.Fields{"stages": stages, "background": pipeline.Background})
	}

	if len(pipeline.Commands) == 1 && RunsInParent(pipeline.Commands[0].Name()) {
		fn, ok := s.builtins[pipeline.Commands[0].Name()]
		if !ok {
			return nil
		}
		bindings := IOBindings{Stdin: stdin, Stdout: s.Out, Stderr: s.Err}
		return fn(pipeline.Commands[0].Args(), bindings, s)
	}

	base := IOBindings{Stdin: stdin, Stdout: s.Out, Stderr: s.Err}
	return s.launcher.Run(ctx, pipeline, s, base)
}

// PollJobs reports finished background jobs, the REPL driver calls this
// once per turn.
func (s *Shell) PollJobs() []string {
	return s.Jobs.Poll()
}
