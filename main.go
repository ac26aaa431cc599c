package main

import "github.com/iksnae/chatstate/cmd"

func main() {
	cmd.Execute()
}
