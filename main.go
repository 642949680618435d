package main

import "github.com/Ehs-Dhs/Nektar/cmd"

func main() {
	cmd.Execute()
}
