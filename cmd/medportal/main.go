// Package main is the entry point for the MedPortal API server and its
// account administration commands.
package main

import (
	"os"
)

func main() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
