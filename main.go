package main

import (
	"flag"
	"fmt"
	"os"

	"bookstore/server"

	_ "github.com/mattn/go-sqlite3"
)

func main() {
	commandFlag := flag.String("command", "start", "Command to run modules")
	flag.Parse()

	if *commandFlag == "" {
		fmt.Println("Usage: go run main.go --command <command-name> [... other options]")
		os.Exit(1)
	}

	switch *commandFlag {
	case "start":
		server.StartServer()
	}
}
