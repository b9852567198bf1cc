package main

import "github.com/mywio/release-notifier/cmd"

func main() {
	cmd.Execute()
}
