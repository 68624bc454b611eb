package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/tillberg/autorestart"

	"github.com/webscout-ai/webscout/internal/cli"
)

func main() {
	// Optional .env in the working directory; absence is fine.
	godotenv.Load()

	go autorestart.RestartOnChange()

	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
