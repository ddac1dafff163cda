// Command blogcli is the interactive console client.
package main

import "github.com/maruel/blogdb/cmd/blogcli/commands"

func main() {
	commands.Execute()
}
