package main

import "github.com/dalemusser/talenthub/cmd/talentctl/cmd"

func main() {
	cmd.Execute()
}
