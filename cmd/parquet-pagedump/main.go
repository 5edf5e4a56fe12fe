// Command parquet-pagedump decodes the values of a raw parquet page.
package main

import (
	"fmt"
	"os"

	"github.com/parquet-go/parquet-decoding/internal/cli"
)

func main() {
	if err := cli.Run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
