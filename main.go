package main

import "drum-practice/cmd"

func main() {
	cmd.Execute()
}
