// Package rag holds the document model and the retrieval plumbing used by
// the Self-RAG workflow.
//
// A Document is a chunk of text with metadata; the "source" key names the
// page it came from, or "web_search" for the synthetic document assembled
// from search results. Retriever is the one-method contract the workflow
// depends on.
//
// # Subpackages
//
//   - rag/loader: fetches web pages (goquery and bluemonday) and local files
//   - rag/store: in-memory and pgvector-backed vector stores, plus a
//     deterministic MockEmbedder
//   - rag/retriever: VectorRetriever, which embeds a query and searches a store
//
// Any langchaingo vector store can be used through LangChainRetriever, and
// any langchaingo embedder through LangChainEmbedder.
//
// # Ingestion
//
//	embedder := rag.NewLangChainEmbedder(openaiEmbedder)
//	vs := store.NewInMemoryVectorStore(embedder)
//	// A nil splitter uses NewChunkSplitter: 250 cl100k tokens per chunk.
//	n, err := rag.Ingest(ctx, loader.FromSources(urls), nil, vs)
//	if err != nil {
//		return err
//	}
//	r := retriever.NewVectorRetriever(vs, embedder, rag.RetrievalConfig{K: 4})
package rag
