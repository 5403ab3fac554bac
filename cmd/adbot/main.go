package main

import (
	"github.com/joho/godotenv"
)

func main() {
	// Optional .env for local development; absence is fine.
	_ = godotenv.Load()
	Execute()
}
