package main

import "atm-reconciler/cmd"

func main() {
	cmd.Execute()
}
