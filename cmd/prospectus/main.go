package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/GuangzhiSu/Prospectus-AI/internal/api"
	"github.com/GuangzhiSu/Prospectus-AI/internal/catalog"
	"github.com/GuangzhiSu/Prospectus-AI/internal/common"
	"github.com/GuangzhiSu/Prospectus-AI/internal/config"
	"github.com/GuangzhiSu/Prospectus-AI/internal/draft"
	"github.com/GuangzhiSu/Prospectus-AI/internal/llm"
	"github.com/GuangzhiSu/Prospectus-AI/internal/memory"
	"github.com/GuangzhiSu/Prospectus-AI/internal/workflow"
)

func main() {
	logger := common.Logger()
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		logger.Debug("prospectus: .env file not loaded", "error", err)
	} else {
		logger.Info("prospectus: environment loaded from .env")
	}

	addr := flag.String("addr", ":8082", "listen address")
	configPath := flag.String("config", "", "path to the YAML configuration file")
	dataDir := flag.String("data", "", "directory containing tabular source files")
	storeDir := flag.String("store", "", "directory for the fragment store")
	outputDir := flag.String("output", "", "directory for generated sections and the composite")
	catalogPath := flag.String("catalog", "", "path to the SQLite catalog database (empty disables the catalog)")
	runIngest := flag.Bool("ingest", false, "run ingestion and exit")
	generate := flag.String("generate", "", "comma-separated output section ids to generate and exit ('all' for every section)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("prospectus: configuration invalid", "error", err)
		fmt.Println("config error:", err)
		os.Exit(1)
	}
	if trimmed := strings.TrimSpace(*dataDir); trimmed != "" {
		cfg.DataDir = trimmed
	}
	if trimmed := strings.TrimSpace(*storeDir); trimmed != "" {
		cfg.StoreDir = trimmed
	}
	if trimmed := strings.TrimSpace(*outputDir); trimmed != "" {
		cfg.OutputDir = trimmed
	}
	if trimmed := strings.TrimSpace(*catalogPath); trimmed != "" {
		cfg.CatalogPath = trimmed
	}

	fragments, err := memory.NewStore(cfg.StoreDir)
	if err != nil {
		logger.Error("prospectus: fragment store init failed", "error", err)
		fmt.Println("store error:", err)
		os.Exit(1)
	}
	drafts, err := draft.NewStore(cfg.OutputDir)
	if err != nil {
		logger.Error("prospectus: draft store init failed", "error", err)
		fmt.Println("draft store error:", err)
		os.Exit(1)
	}

	var cat *catalog.Store
	if strings.TrimSpace(cfg.CatalogPath) != "" {
		cat, err = catalog.Open(cfg.CatalogPath)
		if err != nil {
			logger.Warn("prospectus: catalog unavailable, continuing without it", "error", err)
		} else {
			defer cat.Close()
		}
	}

	provider := llm.NewProvider()
	logger.Info("prospectus: llm provider ready", "provider", provider.Name())

	manager := workflow.NewManager(cfg, provider, fragments, drafts, cat, nil)

	if *runIngest {
		result, err := manager.Ingest(ctx)
		if err != nil {
			logger.Error("prospectus: ingestion failed", "error", err)
			fmt.Println("ingest error:", err)
			os.Exit(1)
		}
		fmt.Printf("Ingested %d sources (%d fragments) into %s\n", result.Sources, result.Fragments, fragments.Root())
		return
	}

	if trimmed := strings.TrimSpace(*generate); trimmed != "" {
		var ids []string
		if !strings.EqualFold(trimmed, "all") {
			for _, id := range strings.Split(trimmed, ",") {
				if id = strings.TrimSpace(id); id != "" {
					ids = append(ids, id)
				}
			}
		}
		results, err := manager.GenerateSections(ctx, ids)
		if err != nil {
			logger.Error("prospectus: generation failed", "error", err)
			fmt.Println("generate error:", err)
			os.Exit(1)
		}
		fmt.Printf("Generated %d sections into %s\n", len(results), cfg.OutputDir)
		return
	}

	server, err := api.NewServer(manager)
	if err != nil {
		logger.Error("prospectus: server construction failed", "error", err)
		fmt.Println("server error:", err)
		os.Exit(1)
	}
	logger.Info("prospectus: server listening", "addr", *addr, "health", "/healthz")
	fmt.Printf("Serving on %s\n", *addr)
	if err := http.ListenAndServe(*addr, server); err != nil {
		logger.Error("prospectus: server stopped", "error", err)
		fmt.Println("server stopped:", err)
	}
}
