package main

import (
	"context"
	"os"

	"github.com/grovetools/packerci/cmd"
)

func main() {
	os.Exit(cmd.Execute(context.Background(), os.Args[1:]))
}
