// Package main is the entry point for the dawgbowl CLI tool, which analyzes
// weekly fantasy contest results and reports elite finish rates and traits.
package main

import "github.com/pable/go-dawgbowl-metrics/cmd"

func main() {
	cmd.Execute()
}
