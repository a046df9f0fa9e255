package main

import "github.com/focusflow/focusapi/cmd"

func main() {
	cmd.Execute()
}
