package main

import "github.com/nfrund/binstore/cmd/binstore-cli/cmd"

func main() {
	cmd.Execute()
}
