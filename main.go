package main

import (
	"lcr-engine/internal/cli"
)

func main() {
	cli.Execute()
}
