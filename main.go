package main

import (
	"github.com/resonatehq/console/cmd"
)

func main() {
	cmd.Execute()
}
