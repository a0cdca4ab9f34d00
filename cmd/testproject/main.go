package main

import (
	"github.com/compozy/testproject/cmd/testproject/commands"
)

func main() {
	commands.Execute()
}
