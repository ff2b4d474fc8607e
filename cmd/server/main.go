package main

import (
	"flag"
	"log"
	"net/http"
	"os"

	"rootfind/internal/config"
	"rootfind/internal/logger"
	"rootfind/internal/problem"
	"rootfind/internal/server"
)

func main() {
	cfgPath := flag.String("config", "", "путь к файлу конфигурации (yaml)")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatal(err)
	}
	lg := logger.New(cfg.Log, os.Stdout)

	catalog, err := problem.Load(cfg.Problems)
	if err != nil {
		lg.Error("load problems", "path", cfg.Problems, "err", err)
		os.Exit(1)
	}

	router := server.NewRouter(server.New(*cfg, catalog, lg))
	lg.Info("сервер запущен", "addr", cfg.Server.Addr, "problems", len(catalog))
	if err := http.ListenAndServe(cfg.Server.Addr, router); err != nil {
		lg.Error("listen", "err", err)
		os.Exit(1)
	}
}
