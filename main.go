package main

import "github.com/guimove/binfit/cmd"

func main() {
	cmd.Execute()
}
