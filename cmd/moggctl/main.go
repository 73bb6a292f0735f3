package main

import "github.com/mcoot/mogg-backend/internal/cli"

func main() {
	cli.Execute()
}
