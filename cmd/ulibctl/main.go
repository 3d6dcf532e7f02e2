// Command ulibctl is a small CLI for driving the IPC broker and flash
// registry packages outside of a unit test: it runs the built-in
// producer/consumer demo, queries published interfaces, calls individual
// sample capabilities, and inspects a file-backed registry image.
package main

import (
	"os"

	"github.com/calvinalkan/ulib-broker/internal/clicmd"
)

func main() {
	os.Exit(clicmd.Run(os.Stdout, os.Stderr, os.Args[1:]))
}
