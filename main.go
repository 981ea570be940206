package main

import "github.com/dotcommander/schedlint/cmd"

func main() {
	cmd.Execute()
}
