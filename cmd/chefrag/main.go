package main

import "chefrag/internal/cli"

func main() {
	cli.Execute()
}
