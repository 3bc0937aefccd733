package main

import "github.com/jfmyers9/chartfm/cmd"

func main() {
	cmd.Execute()
}
