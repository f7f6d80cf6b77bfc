package main

import (
	"os"

	"nifri2/emotipet/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
