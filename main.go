package main

import "github.com/vmslab/mmusim/cmd"

func main() {
	cmd.Execute()
}
