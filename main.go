package main

import "github.com/drewgille/lemurs/cmd"

func main() {
	cmd.Execute()
}
