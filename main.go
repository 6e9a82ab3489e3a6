package main

import "gallery-backend/cmd"

func main() {
	cmd.Run()
}
