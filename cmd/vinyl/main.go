package main

import "github.com/tessro/vinyl/internal/cli"

func main() {
	cli.Execute()
}
