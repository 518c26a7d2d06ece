package shell

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyCommand is returned when a pipe has nothing on one side of it.
	ErrEmptyCommand = errors.New("empty command around pipe")
	// ErrMissingRedirectTarget is returned when a redirection operator is
	// the last token, or is immediately followed by another operator.
	ErrMissingRedirectTarget = errors.New("missing redirect target")
	// ErrInvalidRedirectTarget is returned when a redirection's recorded
	// stage index does not correspond to any parsed command.
	ErrInvalidRedirectTarget = errors.New("redirect does not target a command")
	// ErrBackgroundNotTerminal is returned when '&' appears anywhere but
	// the last token of the line.
	ErrBackgroundNotTerminal = errors.New("'&' must be the last token")
)

// Parse assembles a token stream into a Pipeline.
//
// Pipe operators are not recorded as Redirections; the stage topology is
// already fully expressed by the order of Pipeline.Commands, so a separate
// tagged entry would only duplicate that information. Redirections record
// only the file-based operators (>, >>, <), each tagged with the index of
// the command stage it attaches to.
func Parse(tokens []Token) (Pipeline, error) {
	if len(tokens) == 0 {
		return Pipeline{}, nil
	}

	var pipeline Pipeline
	var current SimpleCommand
	sawWordSinceStage := false

	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]

		switch tok.Kind {
		case WordToken:
			current = append(current, tok.Word)
			sawWordSinceStage = true

		case OperatorToken:
			switch tok.Op {
			case Pipe:
				if !sawWordSinceStage {
					return Pipeline{}, fmt.Errorf("%w: before '|'", ErrEmptyCommand)
				}
				pipeline.Commands = append(pipeline.Commands, current)
				current = nil
				sawWordSinceStage = false

			case WriteOut, AppendOut, ReadIn:
				if i+1 >= len(tokens) || tokens[i+1].Kind != WordToken {
					return Pipeline{}, fmt.Errorf("%w: after '%s'", ErrMissingRedirectTarget, tok.Op)
				}
				pipeline.Redirections = append(pipeline.Redirections, Redirection{
					Operator:     tok.Op,
					Target:       tokens[i+1].Word,
					CommandIndex: len(pipeline.Commands),
				})
				i++ // consume the target word

			case Background:
				if i != len(tokens)-1 {
					return Pipeline{}, ErrBackgroundNotTerminal
				}
				pipeline.Background = true
			}
		}
	}

	switch {
	case !sawWordSinceStage && len(pipeline.Commands) > 0:
		return Pipeline{}, fmt.Errorf("%w: after '|'", ErrEmptyCommand)
	case sawWordSinceStage || len(current) > 0:
		pipeline.Commands = append(pipeline.Commands, current)
	}

	for _, r := range pipeline.Redirections {
		if r.CommandIndex >= len(pipeline.Commands) {
			return Pipeline{}, fmt.Errorf("%w: %s", ErrInvalidRedirectTarget, r)
		}
	}

	return pipeline, nil
}
