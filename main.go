package main

import "github.com/jsphweid/retune31/cmd"

func main() {
	cmd.Execute()
}
