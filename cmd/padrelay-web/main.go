// Package main starts the padrelay control process.
package main

import "flag"

// main is the entrypoint for the control process.
func main() {
	debug := flag.Bool("debug", false, "Enable verbose debug logging")
	flag.Parse()

	if err := run(*debug); err != nil {
		logFatal(err)
	}
}
