package main

import "github.com/oshokin/sleep-alarm/cmd/sleep-alarm/cmd"

func main() {
	cmd.Execute()
}
