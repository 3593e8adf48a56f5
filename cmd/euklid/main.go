package main

import (
	"os"

	"github.com/msto63/euklid/cmd/euklid/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
