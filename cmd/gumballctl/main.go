package main

import "github.com/gumballrun/gumballrun/internal/cli"

func main() {
	cli.Execute()
}
