package main

import (
	"github.com/custodia-labs/lineage-cli/internal/adapters/driving/cli"
)

func main() {
	cli.Execute()
}
