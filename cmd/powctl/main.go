package main

import "github.com/dayanaadylkhanova/powgate/cmd/powctl/cmd"

func main() {
	cmd.Execute()
}
