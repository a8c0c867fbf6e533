// Command selfrag answers questions with the self-correcting RAG workflow.
//
//	selfrag -ingest                 index the configured pages and exit
//	selfrag -q "What is RAG?"       answer one question
//	selfrag                         run the example query, then prompt
//
// Configuration comes from the environment or a .env file; see package config.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/redrussianarmy/self-rag/config"
	"github.com/redrussianarmy/self-rag/log"
)

func main() {
	question := flag.String("q", "", "answer a single question and exit")
	ingestOnly := flag.Bool("ingest", false, "index the configured URLs into the vector store and exit")
	flag.Parse()

	cfg := config.Load()
	if err := setupLogging(cfg.LogLevel); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, *question, *ingestOnly); err != nil {
		log.Error("%v", err)
		os.Exit(1)
	}
}

func setupLogging(level string) error {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return err
	}
	log.SetDefaultLogger(log.NewDefaultLogger(lvl))
	return nil
}

func run(ctx context.Context, cfg *config.Config, question string, ingestOnly bool) error {
	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	if ingestOnly {
		n, err := a.ingest(ctx, cfg.Ingest.URLs)
		if err != nil {
			return err
		}
		fmt.Println(styles.info.Render(fmt.Sprintf("Indexed %d chunks from %d sources", n, len(cfg.Ingest.URLs))))
		return nil
	}

	if err := a.prepare(ctx, cfg); err != nil {
		return err
	}

	if question != "" {
		return answer(ctx, a.workflow, question, os.Stdout)
	}
	return interactive(ctx, a.workflow, os.Stdin, os.Stdout)
}
