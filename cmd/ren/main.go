package main

import "github.com/renlang/ren-go/cmd/ren/cli"

func main() {
	cli.Execute()
}
