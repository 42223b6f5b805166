package main

import "github.com/KaramelBytes/solarscope-cli/cmd"

func main() {
	cmd.Execute()
}
