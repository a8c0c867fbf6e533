// Package tool provides the web search providers used to supplement
// retrieval.
//
// Every provider implements WebSearcher and returns SearchResult values
// carrying a URL and a content snippet.
//
//   - TavilySearch posts to the Tavily API and supports a server-side domain
//     allow-list.
//   - BraveSearch queries the Brave Search API and filters domains locally.
//   - CachedSearch wraps any provider with an in-memory TTL cache built on
//     github.com/patrickmn/go-cache.
//
// # Example
//
//	searcher, err := tool.NewTavilySearch("",
//		tool.WithTavilyMaxResults(5),
//		tool.WithTavilyDomains("wikipedia.org", "en.wikipedia.org"),
//	)
//	if err != nil {
//		return err
//	}
//	results, err := tool.NewCachedSearch(searcher, 10*time.Minute).Search(ctx, "what is RAG?")
//
// API keys default to the TAVILY_API_KEY and BRAVE_API_KEY environment
// variables; a missing key yields ErrMissingAPIKey.
package tool
