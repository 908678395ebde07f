package main

import "martianoff/pspec/cmd/pspec/commands"

func main() {
	commands.Execute()
}
