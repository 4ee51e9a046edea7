// Package config loads runtime configuration from the environment, with
// a .env file for local development.
package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	Port       string
	AWSRegion  string
	S3Bucket   string
	AuthSecret string
	// DBBackend selects the store: "dynamo" or "memory".
	DBBackend string
	DevMode   bool
}

func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, relying on environment")
	}
	return Config{
		Port:       getEnv("PORT", "8080"),
		AWSRegion:  getEnv("AWS_REGION", "ap-south-1"),
		S3Bucket:   os.Getenv("S3_BUCKET_NAME"),
		AuthSecret: os.Getenv("AUTH_SECRET"),
		DBBackend:  getEnv("DB_BACKEND", "dynamo"),
		DevMode:    os.Getenv("DEV_MODE") == "true",
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
