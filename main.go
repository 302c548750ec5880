// Package main is the entry point for the sieve CLI.
package main

import "sieve.dev/pkg/sieve/cmd"

func main() {
	cmd.Execute()
}
