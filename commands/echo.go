package commands

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

var (
	unescapeOctal   = regexp.MustCompile(`\\0[0-7][0-7]?[0-7]?`)
	unescapeHex     = regexp.MustCompile(`\\x[0-9a-fA-F][0-9a-fA-F]?`)
	unescapeReplace = strings.NewReplacer(
		`\n`, "\n", // newline
		`\r`, "\r", // carriage return
		`\t`, "\t", // horizontal tab
		`\\`, `\`, // backslash literal
		`\b`, "\b", // backspace
		`\a`, "\a", // alert
		`\f`, "\f", // form feed
		`\v`, "\v", // vertical tab
	)
)

func unescape(s string) string {
	s = unescapeReplace.Replace(s)
	s = unescapeOctal.ReplaceAllStringFunc(s, func(arg string) string {
		out, err := strconv.ParseUint(arg[2:], 8, 8)
		if err != nil {
			return arg
		}
		return string(rune(out))
	})
	s = unescapeHex.ReplaceAllStringFunc(s, func(arg string) string {
		out, err := strconv.ParseUint(arg[2:], 16, 8)
		if err != nil {
			return arg
		}
		return string(rune(out))
	})
	return s
}

// Echo prints its arguments, or the content of the input redirection target
// when one is given.
func Echo(s *Shell, inv *Invocation) int {
	// Text like "-5" is printed, not rejected.
	cmd := &SimpleCommand{
		Use:       "echo [-e] [ARG] ... | echo < FILE",
		Short:     "Display a line of text or the content of a file.",
		NeverBail: true,
	}

	opt := cmd.Flags()
	escaped := opt.Bool('e', "interpret backslash escapes")

	return cmd.Run(inv, func() int {
		w := inv.Stdout

		if inv.InputPath != "" {
			fd, err := s.Fs.Open(inv.InputPath)
			if err != nil {
				fmt.Fprintf(inv.Stderr, "Input file open failed: %v\n", err)
				return 1
			}
			defer fd.Close()

			if _, err := io.Copy(w, fd); err != nil {
				fmt.Fprintf(inv.Stderr, "echo: %v\n", err)
				return 1
			}
			return 0
		}

		args, interpret := opt.Args(), *escaped
		if cmd.ParseError() != nil {
			args, interpret = inv.Args[1:], false
		}

		for i, arg := range args {
			if i > 0 {
				fmt.Fprint(w, " ")
			}

			if interpret {
				arg = unescape(arg)
			}

			fmt.Fprint(w, arg)
		}

		fmt.Fprintln(w)

		return 0
	})
}
