package main

import "rowexec/cmd"

func main() {
	cmd.Execute()
}
