package main

import (
	"os"

	"github.com/dshills/msareview/internal/cli"
)

func main() {
	os.Exit(cli.Run())
}
