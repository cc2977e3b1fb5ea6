package main

import "github.com/dl-alexandre/gdxfer/internal/cli"

func main() {
	cli.Execute()
}
