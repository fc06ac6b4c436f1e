package main

import "github.com/oxwatch/balwatch/internal/cli"

func main() {
	cli.Execute()
}
