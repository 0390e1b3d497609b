package main

import "github.com/gaurav-prasanna/pagemerge/cmd"

func main() {
	cmd.Execute()
}
