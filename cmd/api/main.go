package main

import (
	"log"

	"resume-builder/internal/bootstrap"
	"resume-builder/internal/shared/config"
	"resume-builder/internal/shared/server"
	"resume-builder/internal/shared/telemetry"
)

func main() {
	cfg := config.Load()
	app, err := bootstrap.Build(cfg)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.Printf("shutdown: %v", err)
		}
		_ = telemetry.Logger().Sync()
	}()

	addr := server.Addr(app.Config.Port)
	log.Printf("Starting API server on %s (state store %s, llm %s)", addr, app.Config.StateStore, app.Config.LLMProvider)

	if err := app.Router.Run(addr); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
