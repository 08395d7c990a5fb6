package main

import (
	"os"

	"github.com/jamzrob/todoer/internal/cli"
)

func main() {
	os.Exit(cli.Run(os.Args[1:]))
}
