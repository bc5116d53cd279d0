package main

import "github.com/mpapenbr/kartline/cmd"

func main() {
	cmd.Execute()
}
