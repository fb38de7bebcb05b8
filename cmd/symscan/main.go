// The main package for the symscan executable.
package main

import (
	"symscan/cmd"
)

// main defers all execution to the Cobra CLI library.
func main() {
	cmd.Execute()
}
