package main

import (
	"github.com/joho/godotenv"

	"elements/internal/cli"
)

func main() {
	_ = godotenv.Load()
	cli.Execute()
}
