// main package for solseed command-line tool
// Package main is the entry point for the solseed CLI.
package main

import "solseed.dev/pkg/solseed/cmd"

func main() {
	cmd.Execute()
}
