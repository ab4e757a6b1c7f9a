package main

import "github.com/groupmail/groupmail-services/cmd"

func main() {
	cmd.Execute()
}
