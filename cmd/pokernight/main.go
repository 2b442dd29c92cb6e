package main

import (
	"github.com/mcoot/pokernight-go/internal/cli"
)

func main() {
	cli.Execute()
}
