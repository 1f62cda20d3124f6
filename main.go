package main

import "cryptogram-sync/cmd"

func main() {
	cmd.Execute()
}
