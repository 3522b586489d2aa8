package main

import "github.com/davebream/widgetmcp/cmd"

func main() {
	cmd.Execute()
}
