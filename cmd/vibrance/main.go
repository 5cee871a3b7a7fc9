// Vibrance - themed colour palettes from images
//
// Vibrance quantizes an image down to a handful of representative colours and
// picks vibrant and muted roles from them, each with readable text colours.
package main

import (
	"os"

	"github.com/jmylchreest/vibrance/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
