// Command reel edits screen-recorded demo projects from the command line.
package main

import "github.com/mesh-intelligence/reel/internal/cli"

func main() {
	cli.Execute()
}
