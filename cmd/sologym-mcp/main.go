package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/DaraMoh/solo-gym-app/internal/catalog"
	"github.com/DaraMoh/solo-gym-app/internal/config"
	"github.com/DaraMoh/solo-gym-app/internal/mcp"
	"github.com/DaraMoh/solo-gym-app/internal/storage"
	"github.com/DaraMoh/solo-gym-app/internal/tracker"
	mcpserver "github.com/mark3labs/mcp-go/server"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file (local mode)")
	remoteURL := flag.String("url", "", "base URL of a Solo Gym server; enables remote mode")
	apiKey := flag.String("api-key", os.Getenv("SOLOGYM_AUTH_API_KEY"), "API key for writes in remote mode")
	userID := flag.String("user", mcp.LocalUserID, "user to act as in local mode")
	flag.Parse()

	// stdout carries the MCP protocol, so logs go to stderr.
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	var ds mcp.DataSource
	if *remoteURL != "" {
		ds = mcp.NewHTTPClient(*remoteURL, *apiKey)
		log.Info("remote mode", "url", *remoteURL)
	} else {
		cfg, err := config.Load(*configPath)
		if err != nil {
			log.Error("failed to load config", "error", err)
			os.Exit(1)
		}
		store, err := storage.Open(context.Background(), cfg)
		if err != nil {
			log.Error("failed to open storage", "driver", cfg.Storage.Driver, "error", err)
			os.Exit(1)
		}
		defer store.Close()

		cat, err := catalog.Load()
		if err != nil {
			log.Error("failed to load exercise catalog", "error", err)
			os.Exit(1)
		}
		ds = tracker.New(store, cat, log, nil)
		log.Info("local mode", "driver", cfg.Storage.Driver, "user", *userID)
	}

	s := mcp.New(ds, Version, log)
	err := mcpserver.ServeStdio(s, mcpserver.WithStdioContextFunc(func(ctx context.Context) context.Context {
		return mcp.WithUserID(ctx, *userID)
	}))
	if err != nil {
		log.Error("mcp server error", "error", err)
		os.Exit(1)
	}
}
