package main

import (
	_ "github.com/joho/godotenv/autoload"
)

// version will be set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	Execute()
}
