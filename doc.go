// Self-RAG - Retrieval-Augmented Generation with Quality Control
//
// Self-RAG answers questions from an indexed corpus and checks its own work.
// Retrieved passages are graded for relevance, a web search fills the gap
// when passages are dropped, and every generated answer is graded for
// groundedness and for whether it resolves the question. Failed grades loop
// back for another generation up to a fixed bound.
//
// # Quick Start
//
// Index the default Wikipedia pages and ask a question:
//
//	export OPENAI_API_KEY=...
//	export TAVILY_API_KEY=...
//	go run ./cmd/selfrag -q "What is retrieval-augmented generation?"
//
// Without -q the command runs an example query and then prompts for
// questions until "exit", "quit" or "q".
//
// # Packages
//
//   - selfrag: the workflow, its routing decisions and metrics
//   - graph: generic state graph with conditional edges, listeners and checkpoints
//   - chains: LLM-backed graders and the answer generator
//   - rag: documents, embedders, ingestion, vector stores and retrievers
//   - tool: web search providers (Tavily, Brave) and a result cache
//   - store: checkpoint stores backed by Redis, PostgreSQL or SQLite
//   - config: environment and .env configuration
//   - log: leveled logging on top of golog
//
// # Library Use
//
//	wf, err := selfrag.New(selfrag.Collaborators{
//		Retriever:       retriever.NewVectorRetriever(vs, embedder, rag.RetrievalConfig{K: 4}),
//		Relevance:       chains.NewDocumentGrader(llm),
//		Generator:       chains.NewGenerator(llm),
//		Groundedness:    chains.NewHallucinationGrader(llm),
//		AnswerRelevance: chains.NewAnswerGrader(llm),
//		WebSearch:       search,
//	}, selfrag.Options{MaxGenerations: 3})
//	if err != nil {
//		return err
//	}
//	res, err := wf.Run(ctx, question)
//
// res.Outcome reports whether the answer passed both checks or is a
// best-effort answer returned after the retry bound was reached.
//
// # Configuration
//
// The command reads the environment, optionally seeded from a .env file:
//
//   - OPENAI_API_KEY, OPENAI_MODEL, OPENAI_EMBEDDING_MODEL
//   - SELF_RAG_SEARCH_PROVIDER: tavily (default) or brave
//   - TAVILY_API_KEY, BRAVE_API_KEY
//   - SELF_RAG_STORE: memory (default) or pgvector, with SELF_RAG_DATABASE_URL
//   - SELF_RAG_CHECKPOINT: none, memory, redis, postgres or sqlite
//   - SELF_RAG_MAX_GENERATIONS: generation attempts per question (default 3)
//   - SELF_RAG_CALL_TIMEOUT: per-call timeout for external services (default 60s)
//   - SELF_RAG_METRICS_ADDR: serve Prometheus metrics on this address
//   - SELF_RAG_LOG_LEVEL: debug, info, warn, error or none
//
// See package config for the full list.
package selfrag // import "github.com/redrussianarmy/self-rag"
