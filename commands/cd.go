package commands

import (
	"fmt"
	"os"
)

// Cd is the cd shell builtin
func Cd(s *Shell, inv *Invocation) int {
	args := inv.Args
	switch len(args) {
	case 1:
		args = append(args, os.Getenv(EnvHome))
		fallthrough
	case 2:
		if err := os.Chdir(args[1]); err != nil {
			fmt.Fprintf(inv.Stderr, "cd failed: %v\n", err)
			return 1
		}
	default:
		fmt.Fprintf(inv.Stderr, "%s: too many arguments\n", args[0])
		return 1
	}
	return 0
}
