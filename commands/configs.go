package commands

import (
	"fmt"

	"github.com/josephlewis42/opsh/core/config"
)

// ListConfigs lists the configuration files under a directory.
func ListConfigs(s *Shell, inv *Invocation) int {
	cmd := &SimpleCommand{
		Use:   "list_configs [DIR]",
		Short: "List *.json files under DIR (default: the working directory).",
	}

	return cmd.Run(inv, func() int {
		args := cmd.Flags().Args()
		if len(args) > 1 {
			fmt.Fprintf(inv.Stderr, "%s: too many arguments\n", inv.Args[0])
			return 1
		}

		dir := "."
		if len(args) == 1 {
			dir = args[0]
		}

		if err := config.SearchConfigs(s.Fs, dir, config.DefaultConfigExt, config.ListOnly, inv.Stdout, inv.Stderr); err != nil {
			fmt.Fprintf(inv.Stderr, "%s: %v\n", inv.Args[0], err)
			return 1
		}
		return 0
	})
}

// SearchConfigs shows every file it checks under a directory and prints the
// parsed content of those with a matching extension.
func SearchConfigs(s *Shell, inv *Invocation) int {
	cmd := &SimpleCommand{
		Use:   "search_configs [DIR] [EXT]",
		Short: "Search DIR (default: the working directory) for EXT (default: .json) files and display them.",
	}

	return cmd.Run(inv, func() int {
		args := cmd.Flags().Args()
		if len(args) > 2 {
			fmt.Fprintf(inv.Stderr, "%s: too many arguments\n", inv.Args[0])
			return 1
		}

		dir, ext := ".", config.DefaultConfigExt
		if len(args) > 0 {
			dir = args[0]
		}
		if len(args) > 1 {
			ext = args[1]
		}

		if err := config.SearchConfigs(s.Fs, dir, ext, config.WithContent, inv.Stdout, inv.Stderr); err != nil {
			fmt.Fprintf(inv.Stderr, "%s: %v\n", inv.Args[0], err)
			return 1
		}
		return 0
	})
}
