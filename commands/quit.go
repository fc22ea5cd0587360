package commands

// Quit terminates every background job and ends the shell.
func Quit(s *Shell, inv *Invocation) int {
	if err := s.Jobs.TerminateAll(); err != nil {
		s.Logger.Warn("some jobs could not be terminated", "error", err)
	}

	printShutdownBanner(inv.Stdout)
	s.Quit = true
	return 0
}
