package main

import (
	"github.com/joho/godotenv"

	"github.com/koiblue2800/Bot-cotizaciones/internal/cli"
)

func main() {
	// Optional .env for local development; real deployments set the
	// environment directly.
	_ = godotenv.Load()

	cli.Execute()
}
