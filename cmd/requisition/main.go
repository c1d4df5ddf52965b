package main

import (
	"github.com/andrescamacho/requisition-go/internal/adapters/cli"
)

func main() {
	cli.Execute()
}
