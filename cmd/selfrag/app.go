package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/redrussianarmy/self-rag/chains"
	"github.com/redrussianarmy/self-rag/config"
	"github.com/redrussianarmy/self-rag/log"
	"github.com/redrussianarmy/self-rag/rag"
	"github.com/redrussianarmy/self-rag/rag/loader"
	"github.com/redrussianarmy/self-rag/rag/retriever"
	vectorstore "github.com/redrussianarmy/self-rag/rag/store"
	"github.com/redrussianarmy/self-rag/selfrag"
	checkpoint "github.com/redrussianarmy/self-rag/store"
	"github.com/redrussianarmy/self-rag/tool"
)

// app holds the wired components and what must be released on exit.
type app struct {
	workflow  *selfrag.Workflow
	vectors   rag.VectorStore
	ephemeral bool
	cleanup   []func()
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{}
	ok := false
	defer func() {
		if !ok {
			a.Close()
		}
	}()

	opts := []openai.Option{
		openai.WithModel(cfg.OpenAI.Model),
		openai.WithEmbeddingModel(cfg.OpenAI.EmbeddingModel),
	}
	if cfg.OpenAI.APIKey != "" {
		opts = append(opts, openai.WithToken(cfg.OpenAI.APIKey))
	}
	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OpenAI client: %w", err)
	}

	lcEmbedder, err := embeddings.NewEmbedder(llm)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}
	embedder := rag.NewLangChainEmbedder(lcEmbedder)

	switch strings.ToLower(cfg.Store.Backend) {
	case "memory", "":
		a.vectors = vectorstore.NewInMemoryVectorStore(embedder)
		a.ephemeral = true
	case "pgvector":
		pg, err := vectorstore.NewPGVectorStore(ctx, embedder, vectorstore.PGVectorOptions{
			ConnString: cfg.Store.DatabaseURL,
			Dimension:  embedder.GetDimension(),
		})
		if err != nil {
			return nil, err
		}
		a.cleanup = append(a.cleanup, pg.Close)
		if err := pg.InitSchema(ctx); err != nil {
			return nil, err
		}
		a.vectors = pg
	default:
		return nil, fmt.Errorf("unknown vector store %q", cfg.Store.Backend)
	}

	searcher, err := newSearcher(cfg.Search)
	if err != nil {
		return nil, err
	}

	checkpointer, closeCheckpoints, err := checkpoint.Open(ctx, checkpoint.Options{
		Backend:     cfg.Checkpoint.Backend,
		RedisAddr:   cfg.Checkpoint.RedisAddr,
		DatabaseURL: cfg.Store.DatabaseURL,
		SqlitePath:  cfg.Checkpoint.SqlitePath,
	})
	if err != nil {
		return nil, err
	}
	a.cleanup = append(a.cleanup, closeCheckpoints)

	var metrics *selfrag.Metrics
	if cfg.MetricsAddr != "" {
		metrics = a.serveMetrics(cfg.MetricsAddr)
	}

	a.workflow, err = selfrag.New(selfrag.Collaborators{
		Retriever:       retriever.NewVectorRetriever(a.vectors, embedder, rag.RetrievalConfig{K: cfg.Store.TopK}),
		Relevance:       chains.NewDocumentGrader(llm),
		Generator:       chains.NewGenerator(llm),
		Groundedness:    chains.NewHallucinationGrader(llm),
		AnswerRelevance: chains.NewAnswerGrader(llm),
		WebSearch:       searcher,
	}, selfrag.Options{
		MaxGenerations:   cfg.Workflow.MaxGenerations,
		CallTimeout:      cfg.Workflow.CallTimeout,
		GradeConcurrency: cfg.Workflow.GradeConcurrency,
		RecursionLimit:   cfg.Workflow.RecursionLimit,
		Checkpointer:     checkpointer,
		Metrics:          metrics,
	})
	if err != nil {
		return nil, err
	}

	ok = true
	return a, nil
}

// prepare fills the vector store before answering. The in-memory store
// starts empty on every launch.
func (a *app) prepare(ctx context.Context, cfg *config.Config) error {
	if !a.ephemeral && !cfg.Ingest.OnStart {
		return nil
	}
	n, err := a.ingest(ctx, cfg.Ingest.URLs)
	if err != nil {
		return err
	}
	log.Info("indexed %d chunks from %d sources", n, len(cfg.Ingest.URLs))
	return nil
}

func (a *app) ingest(ctx context.Context, sources []string) (int, error) {
	splitter, err := rag.NewChunkSplitter()
	if err != nil {
		return 0, err
	}
	return rag.Ingest(ctx, loader.FromSources(sources), splitter, a.vectors)
}

func (a *app) serveMetrics(addr string) *selfrag.Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := selfrag.NewMetrics(reg)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		log.Info("serving metrics on %s/metrics", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server stopped: %v", err)
		}
	}()
	a.cleanup = append(a.cleanup, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	})
	return metrics
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() {
	for i := len(a.cleanup) - 1; i >= 0; i-- {
		a.cleanup[i]()
	}
	a.cleanup = nil
}

func newSearcher(cfg config.SearchConfig) (tool.WebSearcher, error) {
	var searcher tool.WebSearcher

	switch strings.ToLower(cfg.Provider) {
	case "tavily", "":
		s, err := tool.NewTavilySearch(cfg.TavilyKey,
			tool.WithTavilyMaxResults(cfg.MaxResults),
			tool.WithTavilyDomains(cfg.Domains...),
		)
		if err != nil {
			return nil, err
		}
		searcher = s
	case "brave":
		s, err := tool.NewBraveSearch(cfg.BraveKey,
			tool.WithBraveCount(cfg.MaxResults),
			tool.WithBraveDomains(cfg.Domains...),
		)
		if err != nil {
			return nil, err
		}
		searcher = s
	default:
		return nil, fmt.Errorf("unknown search provider %q", cfg.Provider)
	}

	if cfg.CacheTTL > 0 {
		searcher = tool.NewCachedSearch(searcher, cfg.CacheTTL)
	}
	return searcher, nil
}
