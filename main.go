package main

import "github.com/avinashkr148/Call-analyzer/cmd"

func main() {
	cmd.Execute()
}
