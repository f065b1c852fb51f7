// Command serve starts the gallery web server directly, for deployments that
// run the binary without a subcommand.
package main

import (
	"fmt"
	"os"

	"fauna-gallery/cmd"
)

func main() {
	rootCmd := cmd.NewRootCmd()
	rootCmd.SetArgs(append([]string{"serve"}, os.Args[1:]...))
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
