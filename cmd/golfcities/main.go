package main

import "github.com/cbrunner/golfcities/internal/cli"

func main() {
	cli.Execute()
}
