package main

import "gigsafe/internal/cli"

func main() {
	cli.Execute()
}
