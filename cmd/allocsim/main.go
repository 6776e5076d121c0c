package main

import (
	"os"

	"allocsim/cmd/allocsim/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
