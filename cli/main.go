package main

import "github.com/ao-apps/semanticcms-core-pages-union/cli/cmd"

func main() {
	cmd.Execute()
}
