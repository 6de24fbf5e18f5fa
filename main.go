package main

import "github.com/icco/lumaviz/cmd"

func main() {
	cmd.Execute()
}
