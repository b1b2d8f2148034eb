package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

var loaded = false

// Config reads a key from .env / the process environment.
func Config(key string) string {
	if !loaded {
		if err := godotenv.Load(".env"); err != nil {
			log.Println("no .env file, using process environment")
		}
		loaded = true
	}
	return os.Getenv(key)
}
