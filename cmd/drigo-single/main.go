package main

import (
	"os"

	"github.com/drigo-app/drigo-single/internal/cmd"
)

var version = "dev"

func main() {
	if err := cmd.Execute(version); err != nil {
		os.Exit(1)
	}
}
