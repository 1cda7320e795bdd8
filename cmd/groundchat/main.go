package main

import (
	"os"

	"groundchat/cmd/groundchat/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
