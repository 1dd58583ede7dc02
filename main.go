package main

import "codesage/cmd"

func main() {
	cmd.Execute()
}
