package main

import (
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"

	"github.com/opengov-ph/treasury-backend/internal/auth"
	"github.com/opengov-ph/treasury-backend/internal/config"
	"github.com/opengov-ph/treasury-backend/internal/db"
	"github.com/opengov-ph/treasury-backend/internal/ledger"
	"github.com/opengov-ph/treasury-backend/internal/middleware"
	"github.com/opengov-ph/treasury-backend/internal/treasury"
)

func RootHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprintln(w, "Server is up!")
}

func main() {
	_ = godotenv.Load(".env.local")

	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatal("Failed to load config: ", err)
	}

	conn, err := db.Connect()
	if err != nil {
		log.Fatal(err)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "5050"
	}

	if err := auth.Init(conn); err != nil {
		log.Fatal(err)
	}

	gateway := ledger.NewClient(cfg.Ledger)

	mod, err := treasury.Init(conn, gateway)
	if err != nil {
		log.Fatal(err)
	}

	authSvc := auth.NewService(conn)

	r := chi.NewRouter()
	r.Use(middleware.CORSMiddleware)
	r.Get("/", RootHandler)

	r.Mount("/auth", auth.SetupRoutes(authSvc))
	r.Mount("/treasury", treasury.SetupRoutes(mod.Handler, authSvc, authSvc))

	fmt.Println("Server listening on port :" + port + "...")

	if err := http.ListenAndServe("0.0.0.0:"+port, r); err != nil {
		log.Fatal(err)
	}
}
