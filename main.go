package main

import "github.com/fintari/gramthread/cmd"

func main() {
	cmd.Execute()
}
