// Command quash is an interactive UNIX shell: a lexer/parser/launcher
// pipeline that runs built-ins and external programs, wires pipes and
// file redirection between pipeline stages, and tracks backgrounded jobs.
//
// # Usage
//
//	$ quash
//	$ echo hello | cat > out.txt
//	$ sleep 5 &
//	$ jobs
//
// For non-interactive use, redirect stdin from a script, or use -c to run
// a single line:
//
//	$ quash script.sh
//	$ quash -c 'echo hello'
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/mattn/go-colorable"
	"github.com/spf13/cobra"

	"github.com/jhmcstanton/quash-go/internal/quashlog"
	"github.com/jhmcstanton/quash-go/internal/shell"
)

type cmdGlobal struct {
	flagLogLevel    string
	flagJobCapacity int
	flagCommand     string
	flagNoBanner    bool
}

func main() {
	g := &cmdGlobal{}

	app := &cobra.Command{
		Use:          "quash",
		Short:        "An interactive UNIX command-line shell",
		SilenceUsage: true,
		Args:         cobra.MaximumNArgs(1),
		RunE:         g.run,
	}

	app.PersistentFlags().StringVar(&g.flagLogLevel, "log-level", "", "log level: debug, info, warn, error (default: $QUASH_LOG_LEVEL, else warn)")
	app.PersistentFlags().IntVar(&g.flagJobCapacity, "job-capacity", 100, "maximum number of tracked background jobs")
	app.PersistentFlags().StringVarP(&g.flagCommand, "command", "c", "", "run a single command line and exit")
	app.PersistentFlags().BoolVar(&g.flagNoBanner, "no-banner", false, "suppress the interactive startup banner")

	if err := app.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func (g *cmdGlobal) run(cmd *cobra.Command, args []string) error {
	// --log-level wins when given; otherwise QUASH_LOG_LEVEL; otherwise
	// quashlog.ParseLevel's own "" -> warn default.
	levelSetting := g.flagLogLevel
	if levelSetting == "" {
		levelSetting = os.Getenv("QUASH_LOG_LEVEL")
	}
	level, err := quashlog.ParseLevel(levelSetting)
	if err != nil {
		return fmt.Errorf("--log-level: %w", err)
	}
	logger := quashlog.NewDefault(level)

	// colorable.NewColorableStdout wraps os.Stdout so the prompt's ANSI
	// escapes render on Windows consoles too, not just ANSI-native terminals.
	stdout := colorable.NewColorableStdout()

	sh := shell.New(stdout, os.Stderr, shell.Config{
		JobCapacity: g.flagJobCapacity,
		Logger:      logger,
	})

	ctx := context.Background()

	if g.flagCommand != "" {
		repl, err := shell.NewREPL(sh, nil)
		if err != nil {
			return err
		}
		return repl.RunOne(ctx, g.flagCommand)
	}

	var scriptFile *os.File
	if len(args) == 1 {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		scriptFile = f
	}

	repl, err := shell.NewREPL(sh, scriptFile)
	if err != nil {
		return err
	}
	if g.flagNoBanner {
		repl.Banner = ""
	}
	repl.Prompt = formatPrompt

	return repl.Run(ctx)
}
