// Package shell turns raw input lines into structured commands.
//
// Parsing is intentionally shallow, there is no quoting, escaping or
// expansion:
//
// 1. A trailing & marks the line as a background command and is removed.
//
// 2. The first < and the first > on the line name the input and output
// redirection targets. They are found on the whole line before it is split
// into stages, so an operator inside a later pipeline stage still applies to
// the command as a whole.
//
// 3. The text before the first redirection operator is split on | into
// pipeline stages.
//
// 4. A command with a single stage is split on whitespace into its arguments.
// Stages of a pipeline are kept as raw text and split when they are executed.
package shell

import (
	"strings"
)

const (
	// MaxPipes is the maximum number of stages in a pipeline.
	MaxPipes = 10

	// MaxArgs bounds the argument vector, including the command name.
	MaxArgs = 64
)

// internalNames is the closed set of commands run inside the shell.
var internalNames = map[string]struct{}{
	"cd":             {},
	"echo":           {},
	"clr":            {},
	"quit":           {},
	"set_interval":   {},
	"set_metrics":    {},
	"start_monitor":  {},
	"stop_monitor":   {},
	"status_monitor": {},
	"man":            {},
	"list_configs":   {},
	"search_configs": {},
}

// Command is the parsed form of one input line.
type Command struct {
	// Line is the input with the line terminator, surrounding whitespace and
	// background marker removed.
	Line string

	// Stages holds the raw text of each pipeline stage, left to right.
	Stages []string

	// Argv holds the arguments of a non-piped command.
	Argv []string

	InputPath  string
	OutputPath string

	Background bool
	Internal   bool
}

// Piped reports whether the command has more than one stage.
func (c *Command) Piped() bool {
	return len(c.Stages) > 1
}

// NumPipes returns the number of pipes needed to connect the stages.
func (c *Command) NumPipes() int {
	if len(c.Stages) == 0 {
		return 0
	}
	return len(c.Stages) - 1
}

// Name returns the command name or an empty string.
func (c *Command) Name() string {
	if len(c.Argv) == 0 {
		return ""
	}
	return c.Argv[0]
}

// Empty reports whether there is nothing to run.
func (c *Command) Empty() bool {
	if c.Piped() {
		return false
	}
	return len(c.Argv) == 0
}

// IsInternal reports whether name is a shell builtin.
func IsInternal(name string) bool {
	_, ok := internalNames[name]
	return ok
}

// InternalNames returns the builtin names in no particular order.
func InternalNames() []string {
	var out []string
	for name := range internalNames {
		out = append(out, name)
	}
	return out
}

// SplitArgs splits a stage into its arguments.
func SplitArgs(stage string) []string {
	fields := strings.Fields(stage)
	if len(fields) > MaxArgs-1 {
		fields = fields[:MaxArgs-1]
	}
	return fields
}

// Parse parses a single input line. It never fails, malformed input produces
// a command with the missing parts left empty.
func Parse(line string) *Command {
	cmd := &Command{}

	line = strings.TrimRight(line, " \t\r\n")
	if strings.HasSuffix(line, "&") {
		cmd.Background = true
		line = strings.TrimSuffix(line, "&")
	}
	cmd.Line = strings.TrimSpace(line)

	head := line
	inPos := strings.IndexByte(line, '<')
	outPos := strings.IndexByte(line, '>')

	if inPos >= 0 {
		cmd.InputPath = redirectTarget(line[inPos+1:])
		head = line[:inPos]
	}

	if outPos >= 0 {
		cmd.OutputPath = redirectTarget(line[outPos+1:])
		if outPos < len(head) {
			head = line[:outPos]
		}
	}

	for _, stage := range strings.Split(head, "|") {
		if stage == "" {
			continue
		}
		if len(cmd.Stages) == MaxPipes {
			break
		}
		cmd.Stages = append(cmd.Stages, stage)
	}

	if cmd.Piped() || len(cmd.Stages) == 0 {
		return cmd
	}

	cmd.Argv = SplitArgs(cmd.Stages[0])
	cmd.Internal = IsInternal(cmd.Name())

	return cmd
}

// redirectTarget returns the first word of s, stopping at whitespace or the
// next redirection operator.
func redirectTarget(s string) string {
	s = strings.TrimLeft(s, " \t")
	if end := strings.IndexAny(s, " \t<>"); end >= 0 {
		s = s[:end]
	}
	return s
}
