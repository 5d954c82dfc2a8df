package main

import (
	"log"

	"github.com/joho/godotenv"

	"github.com/opengov-ph/treasury-backend/internal/auth"
	"github.com/opengov-ph/treasury-backend/internal/db"
	"github.com/opengov-ph/treasury-backend/internal/seeds"
)

func main() {
	_ = godotenv.Load(".env.local")

	conn, err := db.Connect()
	if err != nil {
		log.Fatal(err)
	}

	if err := auth.Init(conn); err != nil {
		log.Fatal(err)
	}

	if err := seeds.SeedOfficials(conn); err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}
}
