//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

// Tidies modules, vets and builds every package.
func (Build) All() error {
	if _, err := executeCmd("go", withArgs("mod", "tidy")); err != nil {
		return err
	}
	if _, err := executeCmd("go", withArgs("vet", "./..."), withStream()); err != nil {
		return err
	}
	_, err := executeCmd("go", withArgs("build", "./..."), withStream())
	return err
}

// Builds the demo binary into bin/.
func (Build) Demo() error {
	_, err := executeCmd("go", withArgs("build", "-o", "bin/oxytext", "./cmd/oxytext"), withStream())
	return err
}

// Runs the test suite with the race detector.
func Test() error {
	_, err := executeCmd("go", withArgs("test", "-race", "./..."), withStream())
	return err
}
