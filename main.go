package main

import "civic-project-system/cmd/server"

func main() {
	server.Init()
	server.Run()
}
