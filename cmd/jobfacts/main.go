package main

import (
	"log"

	"github.com/reitermarkus/infosec-job-scraper/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}
