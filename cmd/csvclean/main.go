package main

import (
	"os"

	"github.com/JonMunkholm/csvclean/cmd/csvclean/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
