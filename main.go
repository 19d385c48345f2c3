package main

import "github.com/leakguard-io/leakguard/cmd"

func main() {
	cmd.Execute()
}
