package shell

import "fmt"

// SimpleCommand is one stage of a pipeline: a command name followed by its
// arguments, already expanded of quoting at the lexer stage. args[0] is the
// command name.
type SimpleCommand []string

// Name returns the command word, or "" for an empty command.
func (c SimpleCommand) Name() string {
	if len(c) == 0 {
		return ""
	}
	return c[0]
}

// Args returns the arguments following the command name.
func (c SimpleCommand) Args() []string {
	if len(c) <= 1 {
		return nil
	}
	return c[1:]
}

// Redirection attaches a file-based input or output stream to one stage of
// a Pipeline. CommandIndex identifies which SimpleCommand in Pipeline.Commands
// the redirection applies to.
type Redirection struct {
	Operator     OpKind // WriteOut, AppendOut, or ReadIn
	Target       string
	CommandIndex int
}

func (r Redirection) String() string {
	return fmt.Sprintf("%s %s (stage %d)", r.Operator, r.Target, r.CommandIndex)
}

// Pipeline is one fully parsed command line: one or more SimpleCommands
// connected by pipes, plus any redirections and the background flag.
type Pipeline struct {
	Commands     []SimpleCommand
	Redirections []Redirection
	Background   bool
}

// Empty reports whether the pipeline has no commands, which happens when a
// line is blank or whitespace-only.
func (p Pipeline) Empty() bool {
	return len(p.Commands) == 0
}
