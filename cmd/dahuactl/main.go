package main

import "github.com/vcsh30/dahuactl/internal/cli"

func main() {
	cli.Execute()
}
