// Package main provides versectl, the Versemark admin command line.
package main

import (
	"os"
)

func main() {
	cmd, a := newRootCmd()
	err := cmd.Execute()
	a.close()
	if err != nil {
		os.Exit(1)
	}
}
