package main

import "github.com/leo/txr/internal/cli"

func main() {
	cli.Main(cli.Variant{
		Name:        "n",
		Multiplexer: "tmux",
		Short:       "Open files in your editor inside a tmux session",
	})
}
