package main

import "github.com/theirongolddev/poupa/cmd"

func main() {
	cmd.Execute()
}
