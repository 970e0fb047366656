package main

import "sockstream/cmd/sockstream/cmd"

func main() {
	cmd.Execute()
}
