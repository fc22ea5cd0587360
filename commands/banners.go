package commands

import (
	"fmt"
	"io"
)

const rule = "============================================"

// PrintStartScreen writes the greeting shown when the shell starts.
func PrintStartScreen(w io.Writer) {
	ColorBoldGreen.Fprint(w, "[READY]")
	fmt.Fprintln(w, " Shell environment initialized successfully.")
	ColorBoldCyan.Fprintln(w, "----------------------------------------------")
	ColorBoldYellow.Fprintln(w, ` //== Survivor Operations Interface v1.0 ==\\`)
	ColorBoldCyan.Fprintln(w, "----------------------------------------------")
	fmt.Fprintln(w)

	ColorBoldWhite.Fprintln(w, "Welcome, Operator.")
	fmt.Fprintf(w, "The system is now %s and standing by for your commands.\n\n", ColorBoldGreen.Sprint("operational"))

	fmt.Fprintf(w, "For assistance, type '%s' to access the command guide.\n", ColorBoldBlue.Sprint("man"))
	fmt.Fprintf(w, "%s Ensure you are prepared for your mission before proceeding.\n\n", ColorBoldRed.Sprint("Caution:"))
}

func printShutdownBanner(w io.Writer) {
	fmt.Fprintln(w)
	ColorBoldRed.Fprintln(w, rule)
	ColorBoldRed.Fprintln(w, "|          Shutting down processes          |")
	ColorBoldRed.Fprintln(w, "|        All active tasks terminated        |")
	ColorBoldRed.Fprintln(w, rule)
	fmt.Fprintln(w)
	ColorBoldGreen.Fprintln(w, "Thank you for using the shell. Goodbye!")
	fmt.Fprintln(w)
}

func printMonitorStartBanner(w io.Writer) {
	fmt.Fprintln(w)
	ColorBoldCyan.Fprintln(w, "=========================================")
	ColorBoldMagenta.Fprintln(w, "|         Starting the Monitor...        |")
	ColorBoldCyan.Fprintln(w, "=========================================")
}

func printMonitorStopBanner(w io.Writer, pid int) {
	fmt.Fprintln(w)
	ColorBoldRed.Fprintln(w, "=========================================")
	ColorBoldRed.Fprintln(w, "|      Monitor Process Terminated       |")
	ColorBoldRed.Fprintln(w, "=========================================")
	ColorBoldYellow.Fprintf(w, "Monitor with PID %d has been successfully stopped.\n", pid)
	fmt.Fprintln(w)
}
