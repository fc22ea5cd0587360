package commands

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"syscall"

	"github.com/josephlewis42/opsh/core/shell"
)

// MonitorCommandName is the builtin whose background job is the monitor.
const MonitorCommandName = "start_monitor"

func printSetIntervalUsage(w io.Writer) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  set_interval <seconds>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Description:")
	fmt.Fprintln(w, "  Set the interval (in seconds) for the monitor's update frequency.")
	fmt.Fprintln(w)
}

// SetInterval changes the monitor refresh period.
func SetInterval(s *Shell, inv *Invocation) int {
	if len(inv.Args) < 2 {
		printSetIntervalUsage(inv.Stderr)
		return 1
	}

	interval, err := strconv.Atoi(inv.Args[1])
	if err != nil || interval < 0 {
		fmt.Fprintf(inv.Stderr, "Invalid interval: %s\n", inv.Args[1])
		printSetIntervalUsage(inv.Stderr)
		return 1
	}

	s.monitorConfig().Interval = interval
	fmt.Fprintf(inv.Stdout, "Interval set to %d seconds\n", interval)
	s.saveMonitorConfig()

	return 0
}

// SetMetrics replaces the metric selection with the metrics at the given
// catalog positions. Invalid positions are reported and skipped.
func SetMetrics(s *Shell, inv *Invocation) int {
	if len(inv.Args) < 2 {
		s.Catalog.WriteMapping(inv.Stdout)

		w := inv.Stderr
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Usage:")
		fmt.Fprintln(w, "  set_metrics <metric_number1> <metric_number2> ...")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Description:")
		fmt.Fprintln(w, "  Select one or more metrics by their respective numbers.")
		return 1
	}

	selected := []string{}
	for _, arg := range inv.Args[1:] {
		if len(selected) == shell.MaxArgs {
			break
		}

		idx, err := strconv.Atoi(arg)
		if err != nil {
			fmt.Fprintf(inv.Stderr, "Invalid metric number: %s\n", arg)
			continue
		}

		name, err := s.Catalog.Lookup(idx)
		if err != nil {
			fmt.Fprintf(inv.Stderr, "Invalid metric number: %d\n", idx)
			continue
		}

		fmt.Fprintf(inv.Stdout, "Selected metric number %d corresponds to metric name: %s\n", idx, name)
		selected = append(selected, name)
	}

	s.monitorConfig().Metrics = selected
	s.saveMonitorConfig()

	return 0
}

// StartMonitor replaces the running program with the monitor, handing it
// the selected metrics. Run in the foreground it ends the shell, so it is
// meant to be started with a trailing &.
func StartMonitor(s *Shell, inv *Invocation) int {
	if s.Monitor == nil {
		fmt.Fprintln(inv.Stderr, "Configuration not loaded.")
		return 1
	}

	printMonitorStartBanner(inv.Stdout)

	if err := s.Bridge.Start(s.Monitor.Metrics); err != nil {
		fmt.Fprintf(inv.Stderr, "start_monitor: %v\n", err)
		return 1
	}
	return 0
}

// StopMonitor interrupts the background monitor job.
func StopMonitor(s *Shell, inv *Invocation) int {
	job, ok := s.Jobs.FindByName(MonitorCommandName)
	if !ok {
		fmt.Fprintln(inv.Stdout, "No active monitor found to stop.")
		return 1
	}

	if err := s.Jobs.Signal(job.PID, syscall.SIGINT); err != nil {
		fmt.Fprintf(inv.Stderr, "Failed to stop monitor: %v\n", err)
		return 1
	}

	printMonitorStopBanner(inv.Stdout, job.PID)
	s.Jobs.Remove(job.PID)
	return 0
}

// StatusMonitor prints the monitor's status report.
func StatusMonitor(s *Shell, inv *Invocation) int {
	cmd := &SimpleCommand{
		Use:   "status_monitor [--color=WHEN]",
		Short: "Display the status of the monitoring process.",
	}

	var printer ColorPrinter
	printer.Init(cmd.Flags())

	return cmd.Run(inv, func() int {
		fd, err := s.Fs.Open(s.Config.StatusPath)
		if err != nil {
			printer.Fprintf(inv.Stderr, ColorBoldRed, "Failed to open status file: %v\n", err)
			return 1
		}
		defer fd.Close()

		w := inv.Stdout
		fmt.Fprintln(w)
		printer.Fprintf(w, ColorBoldBlue, "=========================================\n")
		printer.Fprintf(w, ColorBoldBlue, "|          Monitor Status Report        |\n")
		printer.Fprintf(w, ColorBoldBlue, "=========================================\n")
		fmt.Fprintln(w)

		scanner := bufio.NewScanner(fd)
		for scanner.Scan() {
			printer.Fprintf(w, ColorBoldWhite, "%s", scanner.Text())
			fmt.Fprintln(w)
		}

		fmt.Fprintln(w)
		printer.Fprintf(w, ColorBoldBlue, "=========================================\n")

		if err := scanner.Err(); err != nil {
			fmt.Fprintf(inv.Stderr, "status_monitor: %v\n", err)
			return 1
		}
		return 0
	})
}
