package main

import "stay-nest/cmd"

func main() {
	cmd.Execute()
}
