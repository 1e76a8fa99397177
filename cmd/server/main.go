package main

import "github.com/eslsoft/cyberpath/cmd"

func main() {
	cmd.Execute()
}
