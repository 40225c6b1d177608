package main

import (
	"log"

	"github.com/ticket-marketplace/payments/config"
	"github.com/ticket-marketplace/payments/internal/app"
)

func main() {
	cfg, err := config.New()
	if err != nil {
		log.Fatalf("Config error: %s", err)
	}
	app.Run(cfg)
}
