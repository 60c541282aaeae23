package main

import "github.com/agentic-research/gale/cmd"

func main() {
	cmd.Execute()
}
