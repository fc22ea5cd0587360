package main

import "github.com/josephlewis42/opsh/cmd"

func main() {
	cmd.Execute()
}
