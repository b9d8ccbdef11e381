// Pipette - pick colours and extract palettes from images
//
// Pipette samples colours from images, renders a magnified view around any
// pixel and extracts dominant-colour palettes with k-means clustering.
package main

import (
	"os"

	"github.com/jmylchreest/pipette/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
