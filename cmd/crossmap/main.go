// Command crossmap analyzes follower cards collected from several platforms.
//
// Usage:
//
//	crossmap analyze cards.jsonl                 # JSON report on stdout
//	crossmap analyze --format text a.jsonl b.json
//	cat cards.jsonl | crossmap analyze -         # read from stdin
//	crossmap serve --addr :8080                  # HTTP API
package main

import (
	"fmt"
	"os"

	_ "github.com/joho/godotenv/autoload"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
