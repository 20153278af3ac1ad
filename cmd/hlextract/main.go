package main

import "github.com/forPelevin/hlextract/internal/cli"

func main() {
	cli.Main()
}
