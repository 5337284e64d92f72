package main

import "cultivar/cmd"

func main() {
	cmd.Execute()
}
