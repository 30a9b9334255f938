package main

import "github.com/dgallion1/docmark/internal/cli"

func main() {
	cli.Execute()
}
