// Command dormstats loads rooms and students into MySQL and runs reports.
package main

import (
	"fmt"
	"os"

	"github.com/mkorolev/dormstats/internal/cli"
)

func main() {
	if err := cli.Run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
