package main

import "scriptpack/internal/cli"

func main() {
	cli.Execute()
}
