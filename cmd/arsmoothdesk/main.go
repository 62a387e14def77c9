package main

import (
	"github.com/alphonsez1/ARSmoothDesk/cmd/arsmoothdesk/commands"
)

func main() {
	commands.Execute()
}
