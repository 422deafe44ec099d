package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"vaultrag/internal/config"
	"vaultrag/internal/domain"
	"vaultrag/internal/embedding/hashing"
	embopenai "vaultrag/internal/embedding/openai"
	"vaultrag/internal/expander"
	"vaultrag/internal/index"
	llmopenai "vaultrag/internal/llm/openai"
	"vaultrag/internal/retriever"
	"vaultrag/internal/tui"
)

func main() {
	_ = godotenv.Load()

	var cfgPath, topicsFlag string
	var k int
	var expand bool
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ~/.config/vaultrag/config.yaml if not provided)")
	flag.StringVar(&topicsFlag, "topics", "", "Comma-separated topics; prints context to stdout instead of starting the TUI")
	flag.IntVar(&k, "k", 0, "Chunks per topic (defaults to config top_k)")
	flag.BoolVar(&expand, "expand", false, "Run topic expansion on the supplied topics")
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

	emb := newEmbedder(cfg)

	// Index and metadata are loaded together; a size or embedder mismatch
	// is fatal here, before any query runs.
	idx, meta, err := index.Open(cfg.Paths.IndexFile, cfg.Paths.MetadataFile, emb.Name())
	if err != nil {
		log.Fatalf("failed to open index pair: %v", err)
	}

	ret := retriever.New(idx, meta, emb, cfg.Retrieval.TopK)
	exp := newExpander(cfg, ret)

	if topicsFlag != "" {
		runOneShot(cfg, ret, exp, topicsFlag, k, expand)
		return
	}

	summary := fmt.Sprintf("%d chunks indexed with %s", idx.Len(), emb.Name())
	var expPort tui.ExpandPort
	if exp != nil {
		expPort = exp
	}
	m := tui.New(ret, expPort, summary)
	if _, err := tea.NewProgram(m).Run(); err != nil {
		log.Fatal(err)
	}
}

func runOneShot(cfg *config.AppConfig, ret *retriever.Retriever, exp *expander.Expander, topicsFlag string, k int, expand bool) {
	var topics []string
	for _, part := range strings.Split(topicsFlag, ",") {
		if t := strings.TrimSpace(part); t != "" {
			topics = append(topics, t)
		}
	}

	if expand {
		if exp == nil {
			log.Fatalf("expansion requires OPENAI_API_KEY")
		}
		res, err := exp.Expand(context.Background(), topics)
		if err != nil {
			log.Fatalf("expand failed: %v", err)
		}
		fmt.Print(res.Context)
		if res.Degraded {
			fmt.Fprintf(os.Stderr, "note: expansion degraded: %s\n", res.Note)
		}
		return
	}

	doc, err := ret.Retrieve(context.Background(), topics, k)
	if err != nil {
		log.Fatalf("retrieve failed: %v", err)
	}
	fmt.Print(doc)
}

func newEmbedder(cfg *config.AppConfig) domain.Embedder {
	switch cfg.Embedder.Type {
	case "hashing", "":
		return hashing.New(cfg.Embedder.Dimension)
	case "openai":
		emb, err := embopenai.New(cfg.Embedder.Model)
		if err != nil {
			log.Fatalf("openai embedder init failed: %v", err)
		}
		return emb
	default:
		log.Fatalf("unknown embedder: %s", cfg.Embedder.Type)
		return nil
	}
}

// newExpander returns nil when no model collaborator is available;
// retrieval still works, only expansion is disabled.
func newExpander(cfg *config.AppConfig, ret *retriever.Retriever) *expander.Expander {
	if os.Getenv("OPENAI_API_KEY") == "" {
		return nil
	}
	suggester, err := llmopenai.New(cfg.Expansion.Model)
	if err != nil {
		return nil
	}
	return expander.New(ret, suggester, cfg.Expansion.MaxTokens,
		time.Duration(cfg.Expansion.TimeoutSecs)*time.Second)
}
