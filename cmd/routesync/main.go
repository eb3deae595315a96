package main

import (
	"os"

	"github.com/joho/godotenv"
)

func main() {
	// A missing .env is not an error; real environment variables win.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		printError(os.Stderr, err)
		os.Exit(1)
	}
}
