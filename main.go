package main

import "github.com/wkalt/typewatch/cli/cmd"

func main() {
	cmd.Execute()
}
