package main

import (
	"log"
	"os"

	"filebench/cmd"
	"filebench/config"
)

func main() {
	cnf, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	// Commands print their own errors; only the exit status is left here.
	if err := cmd.Execute(cnf); err != nil {
		os.Exit(1)
	}
}
