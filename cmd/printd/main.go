package main

import "github.com/printdesk/printd/internal/cli"

func main() {
	cli.Execute()
}
