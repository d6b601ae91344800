// Command ruki converts robot programs between the Ruki IR, URScript,
// Polyscope archives and RoboDK Python.
package main

import (
	"os"

	"github.com/Borbofruto/Ruki/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		os.Exit(cli.GetExitCode(err))
	}
}
