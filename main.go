package main

import "github.com/Tiliavir/lma/cmd"

func main() {
	cmd.Execute()
}
