package main

import "github.com/zalepa/permits/cmd"

func main() {
	cmd.Execute()
}
