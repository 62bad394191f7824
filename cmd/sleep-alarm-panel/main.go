package main

import "github.com/oshokin/sleep-alarm/cmd/sleep-alarm-panel/cmd"

func main() {
	cmd.Execute()
}
