package main

import (
	"github.com/fdkg-lab/fdkg-advisor/cmd"
)

func main() {
	cmd.Execute()
}
