package lang

import "github.com/anmitsu/go-shlex"

// SplitShellCommand tokenizes a ShellExecute argument string the way a
// POSIX shell would (quoting, escapes), so `&ShellExecute("prog -a b")`
// can be execed with a real argv instead of passed to a shell.
func SplitShellCommand(cmd string) ([]string, error) {
	return shlex.Split(cmd, true)
}
