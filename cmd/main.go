// Command matchkey generates and verifies referee payment keys.
package main

import (
	"context"
	"errors"
	"os"

	"github.com/okian/matchkey/internal/cli"
)

var version = "dev"

func main() {
	os.Exit(run(context.Background(), os.Args[1:]))
}

// run executes the command tree and returns the process exit status.
func run(ctx context.Context, args []string) int {
	root := cli.NewRootCommand(version)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	if code := cli.ExitCode(err); code != 0 {
		var exit *cli.ExitError
		if !errors.As(err, &exit) {
			root.PrintErrln("Error:", err)
		}
		return code
	}
	return 0
}
