package main

import "github.com/leo/txr/internal/cli"

func main() {
	cli.Main(cli.Variant{
		Name:        "txr",
		Multiplexer: "zellij",
		Short:       "Open files in your editor inside a zellij session",
	})
}
