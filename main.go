package main

import (
	_ "github.com/joho/godotenv/autoload" // Load .env before anything reads the environment

	"ost-labs/orgmeta/cmd"
)

func main() {
	cmd.Execute()
}
