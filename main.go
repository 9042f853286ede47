package main

import "github.com/melodist/melodist/cmd"

func main() {
	cmd.Execute()
}
