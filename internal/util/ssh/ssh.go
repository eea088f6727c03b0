package ssh

import (
	"context"
	"fmt"
	"strings"
)

// Runner defines the interface for executing commands on a remote host.
type Runner interface {
	Run(ctx context.Context, cmd ...string) (stdout, stderr string, err error)
}

// shell operators that must not be quoted, so callers can chain commands
// with "&&" or ";".
var unquotable = map[string]struct{}{
	"&&": {},
	"||": {},
	";":  {},
	":":  {},
	"&":  {},
	"|":  {},
}

// FormatCmd renders an argument vector as a single command line for the
// remote shell, quoting every token except shell operators.
func FormatCmd(cmd ...string) string {
	out := ""
	for _, s := range cmd {
		if _, ok := unquotable[s]; ok {
			out = fmt.Sprintf("%s%s ", out, s)
			continue
		}

		out = fmt.Sprintf("%s%q ", out, s)
	}

	return strings.TrimSpace(out)
}
