package commands

import (
	"fmt"
)

// Clr clears the terminal.
func Clr(s *Shell, inv *Invocation) int {
	// Assumes VT100 compatibility.
	fmt.Fprint(inv.Stdout, "\033[H\033[J")
	return 0
}
