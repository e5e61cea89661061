// Package main is the entry point for the sessionctl CLI.
package main

import (
	"sessionctl/cli/cmd"
)

func main() {
	cmd.Execute()
}
