package main

import "github.com/jfmyers9/scloud/cmd"

func main() {
	cmd.Execute()
}
