package main

import (
	"os"

	"github.com/techflow/citechain/internal/interfaces/cli"
)

func main() {
	os.Exit(cli.Execute())
}
