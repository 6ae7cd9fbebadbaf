package main

import "github.com/theirongolddev/paysplit/cmd"

func main() {
	cmd.Execute()
}
