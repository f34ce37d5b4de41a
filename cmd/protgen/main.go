// SPDX-License-Identifier: MIT

// Command protgen generates protein sequences with a trained sequence model
// and one of four decoding strategies, and inspects transition schedules.
package main

import "os"

// Version is set at build time.
var Version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
