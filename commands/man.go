package commands

import (
	"fmt"
	"io"
)

// ManualEntry documents one builtin.
type ManualEntry struct {
	Name        string
	Description string
	Usage       string
	Example     string
}

var manual = []ManualEntry{
	{
		Name:        "cd",
		Description: "Change the current working directory.",
		Usage:       "cd <directory_path>",
		Example:     "cd /home/user",
	},
	{
		Name:        "echo",
		Description: "Display a line of text or a string, or the content of a file given with <.",
		Usage:       "echo <text>",
		Example:     "echo Hello, World!",
	},
	{
		Name:        "clr",
		Description: "Clear the screen.",
		Usage:       "clr",
	},
	{
		Name:        "quit",
		Description: "Terminate all background jobs and exit the shell.",
		Usage:       "quit",
	},
	{
		Name:        "set_interval",
		Description: "Set the interval (in seconds) for the monitor's update frequency.",
		Usage:       "set_interval <seconds>",
		Example:     "set_interval 10",
	},
	{
		Name:        "set_metrics",
		Description: "Set the metrics to be monitored. Without arguments, list the available metrics.",
		Usage:       "set_metrics <metric_number1> <metric_number2> ...",
		Example:     "set_metrics 1 3 5",
	},
	{
		Name:        "start_monitor",
		Description: "Start the monitoring process. Run it in the background, in the foreground the monitor replaces the shell.",
		Usage:       "start_monitor &",
	},
	{
		Name:        "stop_monitor",
		Description: "Stop the currently running monitor process.",
		Usage:       "stop_monitor",
	},
	{
		Name:        "status_monitor",
		Description: "Display the status of the monitoring process.",
		Usage:       "status_monitor",
	},
	{
		Name:        "man",
		Description: "Display this manual.",
		Usage:       "man",
	},
	{
		Name:        "list_configs",
		Description: "List configuration files under a directory, recursively.",
		Usage:       "list_configs [directory]",
		Example:     "list_configs /etc",
	},
	{
		Name:        "search_configs",
		Description: "Search a directory recursively for files with an extension and display their content.",
		Usage:       "search_configs [directory] [extension]",
		Example:     "search_configs . .json",
	},
}

// Manual returns the documentation of every builtin in display order.
func Manual() []ManualEntry {
	return append([]ManualEntry(nil), manual...)
}

// Man prints the manual.
func Man(s *Shell, inv *Invocation) int {
	cmd := &SimpleCommand{
		Use:   "man [--color=WHEN]",
		Short: "Display the manual of the shell builtins.",
	}

	var printer ColorPrinter
	printer.Init(cmd.Flags())

	return cmd.Run(inv, func() int {
		writeManual(inv.Stdout, &printer)
		return 0
	})
}

func writeManual(w io.Writer, printer *ColorPrinter) {
	fmt.Fprintln(w)
	printer.Fprintf(w, ColorBoldCyan, "================== MANUAL ==================\n")
	fmt.Fprintln(w)

	field := func(label, value string) {
		printer.Fprintf(w, ColorBoldYellow, "%-12s", label)
		fmt.Fprintf(w, " %s\n", value)
	}

	for _, entry := range manual {
		printer.Fprintf(w, ColorBoldYellow, "%-12s", "COMMAND:")
		fmt.Fprint(w, " ")
		printer.Fprintf(w, ColorBoldWhite, "%s\n", entry.Name)
		field("DESCRIPTION:", entry.Description)
		field("USAGE:", entry.Usage)
		if entry.Example != "" {
			field("EXAMPLE:", entry.Example)
		}
		fmt.Fprintln(w)
	}

	printer.Fprintf(w, ColorBoldCyan, "============================================\n")
	fmt.Fprintln(w)
}
