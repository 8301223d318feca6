package main

import (
	"flag"
	"fmt"
	"os"

	"go-product-etl/internal/api"
	"go-product-etl/internal/api/handler"
	"go-product-etl/internal/model"
	"go-product-etl/internal/store"
	"go-product-etl/pkg/logger"
	"go-product-etl/pkg/router"

	_ "go-product-etl/docs"
)

// @title Product ETL API
// @version 1.0
// @description Trigger and inspect product ETL pipeline runs.
// @BasePath /api/v1
func main() {
	configPath := flag.String("config", "", "path to JSON config file")
	flag.Parse()

	cfg, err := model.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if err := store.InitDB(cfg.DBPath); err != nil {
		panic(err)
	}

	handler.Init(cfg, logger.NewStdout())

	r := router.New()
	api.RegisterRoutes(r)
	r.Start(cfg.ListenAddr)
}
