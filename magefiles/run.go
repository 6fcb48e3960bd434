//go:build mage

package main

import (
	"fmt"
	"os"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Builds and runs the demo. OXY_CONFIG and OXY_FONT select the config file and font.
func (Run) Demo() error {
	mg.Deps(Build.Demo)

	var args []string
	if cfg := os.Getenv("OXY_CONFIG"); cfg != "" {
		args = append(args, "-config", cfg)
	}
	if font := os.Getenv("OXY_FONT"); font != "" {
		args = append(args, "-font", font)
	}
	fmt.Println("Run demo...")
	_, err := executeCmd("bin/oxytext", withArgs(args...), withStream())
	return err
}
