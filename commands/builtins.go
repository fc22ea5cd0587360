package commands

import (
	"sort"
)

// AllBuiltins holds a list of all registered shell builtins
var AllBuiltins = make(map[string]Builtin)

// Builtin is a command run inside the shell process.
type Builtin interface {
	Main(s *Shell, inv *Invocation) int
}

type BuiltinFunc func(s *Shell, inv *Invocation) int

func (f BuiltinFunc) Main(s *Shell, inv *Invocation) int {
	return f(s, inv)
}

var _ Builtin = (BuiltinFunc)(nil)

// BuiltinNames returns the registered builtin names, sorted.
func BuiltinNames() []string {
	var out []string
	for name := range AllBuiltins {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func init() {
	AllBuiltins["cd"] = BuiltinFunc(Cd)
	AllBuiltins["echo"] = BuiltinFunc(Echo)
	AllBuiltins["clr"] = BuiltinFunc(Clr)
	AllBuiltins["quit"] = BuiltinFunc(Quit)
	AllBuiltins["set_interval"] = BuiltinFunc(SetInterval)
	AllBuiltins["set_metrics"] = BuiltinFunc(SetMetrics)
	AllBuiltins["start_monitor"] = BuiltinFunc(StartMonitor)
	AllBuiltins["stop_monitor"] = BuiltinFunc(StopMonitor)
	AllBuiltins["status_monitor"] = BuiltinFunc(StatusMonitor)
	AllBuiltins["man"] = BuiltinFunc(Man)
	AllBuiltins["list_configs"] = BuiltinFunc(ListConfigs)
	AllBuiltins["search_configs"] = BuiltinFunc(SearchConfigs)
}
