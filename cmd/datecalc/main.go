package main

import (
	"fmt"
	"os"

	"github.com/hitoshi/datecalc/internal/app"
)

func main() {
	if err := app.Run(os.Stderr, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "datecalc: %v\n", err)
		os.Exit(1)
	}
}
