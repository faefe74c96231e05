package main

import "github.com/chrisdamba/trafficsim/cmd"

func main() {
	cmd.Execute()
}
