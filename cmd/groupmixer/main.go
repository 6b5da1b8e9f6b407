// Command groupmixer runs the group-assignment annealer over a JSON problem
// file and prints the best schedule it found.
//
//	groupmixer solve -input event.json [-seed 42] [-verbose]
package main

import (
	"fmt"
	"os"

	"github.com/hashicorp/cli"
)

const version = "1.0.0"

func main() {
	c := cli.NewCLI("groupmixer", version)
	c.Args = os.Args[1:]
	c.Commands = map[string]cli.CommandFactory{
		"solve": func() (cli.Command, error) {
			return &solveCommand{}, nil
		},
	}

	exitStatus, err := c.Run()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	os.Exit(exitStatus)
}
