package main

import (
	"os"

	"github.com/microreview/microreview/internal/cli"
)

func main() {
	os.Exit(cli.Run())
}
