package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/ledgerbook-dev/ledgerbook/internal/commands"
)

func main() {
	// A local .env may carry LEDGERBOOK_DSN; missing is fine.
	_ = godotenv.Load()

	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
