package commands

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	getopt "github.com/pborman/getopt/v2"
)

// Invocation holds the arguments and streams of one builtin call.
type Invocation struct {
	// Args holds the command name followed by its arguments.
	Args []string

	// InputPath is the file named by input redirection, if any.
	InputPath string

	Stdout io.Writer
	Stderr io.Writer
}

type SimpleCommand struct {
	// Use holds a one line usage string
	Use string
	// Short holds a one line description of the command.
	Short string
	// ShowHelp sets whether help is displayed or not.
	// If this is non-nil when Run() is called, then the default help flag isn't
	// added.
	ShowHelp *bool
	// NeverBail skips interacting with stdout/stderr on failure and
	// always runs the callback. ParseError reports the failure.
	NeverBail bool

	flags    *getopt.Set
	parseErr error
}

// Flags gets the command's flag set.
func (s *SimpleCommand) Flags() *getopt.Set {
	if s.flags == nil {
		s.flags = getopt.New()
	}

	return s.flags
}

// PrintHelp writes help for the command to the given writer.
func (s *SimpleCommand) PrintHelp(w io.Writer) {
	fmt.Fprint(w, "usage: ")
	fmt.Fprintln(w, s.Use)
	fmt.Fprintln(w, s.Short)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	s.Flags().PrintOptions(w)
}

// ParseError returns the flag parsing error swallowed by NeverBail.
func (s *SimpleCommand) ParseError() error {
	return s.parseErr
}

// Run the command, if flag parsing was successful call the callback.
func (s *SimpleCommand) Run(inv *Invocation, callback func() int) int {
	opts := s.Flags()

	// Add help flag if not overridden.
	if s.ShowHelp == nil {
		s.ShowHelp = opts.BoolLong("help", 'h', "show this help and exit")
	}

	err := opts.Getopt(inv.Args, nil)
	if err != nil {
		if s.NeverBail {
			s.parseErr = err
			return callback()
		}

		fmt.Fprintf(inv.Stderr, "error: %s\n\n", err)

		s.PrintHelp(inv.Stderr)
		return 1
	}

	if *s.ShowHelp {
		s.PrintHelp(inv.Stdout)
		return 0
	}

	return callback()
}

const (
	colorAlways = "always"
	colorAuto   = "auto"
	colorNever  = "never"
)

var (
	ColorBoldBlue    = color.New(color.FgBlue, color.Bold)
	ColorBoldGreen   = color.New(color.FgGreen, color.Bold)
	ColorBoldCyan    = color.New(color.FgCyan, color.Bold)
	ColorBoldRed     = color.New(color.FgRed, color.Bold)
	ColorBoldYellow  = color.New(color.FgYellow, color.Bold)
	ColorBoldMagenta = color.New(color.FgMagenta, color.Bold)
	ColorBoldWhite   = color.New(color.FgWhite, color.Bold)
	ColorBlue        = color.New(color.FgBlue)
	ColorGreen       = color.New(color.FgGreen)
)

type ColorPrinter struct {
	value *string
}

// Init registers the --color flag.
func (c *ColorPrinter) Init(flags *getopt.Set) {
	c.value = flags.EnumLong(
		"color",
		rune(0), // No short flag.
		[]string{colorAlways, colorAuto, colorNever},
		colorAuto,
		"colorize the output (always|auto|never)")
}

func (c *ColorPrinter) ShouldColor() bool {
	switch {
	case c.value == nil:
		return !color.NoColor
	case *c.value == colorNever:
		return false
	case *c.value == colorAlways:
		return true
	default:
		return !color.NoColor
	}
}

func (c *ColorPrinter) Sprintf(col *color.Color, format string, a ...interface{}) string {
	if c.ShouldColor() {
		forced := *col
		forced.EnableColor()
		return forced.Sprintf(format, a...)
	}
	return fmt.Sprintf(format, a...)
}

// Fprintf writes the colored string to w.
func (c *ColorPrinter) Fprintf(w io.Writer, col *color.Color, format string, a ...interface{}) {
	fmt.Fprint(w, c.Sprintf(col, format, a...))
}
