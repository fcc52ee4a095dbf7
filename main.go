package main

import "github.com/lepinkainen/bibly/cmd"

var execute = cmd.Execute

func main() {
	execute()
}
