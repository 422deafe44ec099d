package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"

	"vaultrag/internal/chunker"
	"vaultrag/internal/config"
	"vaultrag/internal/domain"
	"vaultrag/internal/embedding/hashing"
	"vaultrag/internal/embedding/openai"
	"vaultrag/internal/ingest"
	"vaultrag/internal/summarizer"
)

func main() {
	_ = godotenv.Load()

	var cfgPath, docsDir string
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ~/.config/vaultrag/config.yaml if not provided)")
	flag.StringVar(&docsDir, "docs", "", "Directory of documents to index (overrides config)")
	flag.Parse()

	var cfg *config.AppConfig
	var err error
	if cfgPath == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(cfgPath)
	}
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if docsDir == "" {
		docsDir = cfg.Paths.DocsDir
	}

	emb := newEmbedder(cfg)
	b := ingest.NewBuilder(
		chunker.NewSplitter(cfg.Chunker.Size, cfg.Chunker.Overlap),
		emb,
		summarizer.NewFrequency(),
		cfg.Summary.MaxSentences,
	)

	start := time.Now()
	res, err := b.Build(context.Background(), docsDir)
	if err != nil {
		log.Fatalf("build failed: %v", err)
	}
	if err := res.Persist(cfg.Paths.IndexFile, cfg.Paths.MetadataFile); err != nil {
		log.Fatalf("persist failed: %v", err)
	}

	fmt.Printf("Indexed %d documents, %d chunks in %s\n", res.Documents, res.Index.Len(), time.Since(start).Round(time.Millisecond))
	fmt.Printf("Index:    %s\n", cfg.Paths.IndexFile)
	fmt.Printf("Metadata: %s\n", cfg.Paths.MetadataFile)
	if res.Summary != "" {
		fmt.Printf("Summary:  %s\n", res.Summary)
	}
}

func newEmbedder(cfg *config.AppConfig) domain.Embedder {
	switch cfg.Embedder.Type {
	case "hashing", "":
		return hashing.New(cfg.Embedder.Dimension)
	case "openai":
		emb, err := openai.New(cfg.Embedder.Model)
		if err != nil {
			log.Fatalf("openai embedder init failed: %v", err)
		}
		return emb
	default:
		log.Fatalf("unknown embedder: %s", cfg.Embedder.Type)
		return nil
	}
}
