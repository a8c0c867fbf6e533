package loader

import (
	"context"
	"strings"

	"github.com/redrussianarmy/self-rag/rag"
)

// MultiLoader concatenates the documents of several loaders in order.
type MultiLoader []rag.DocumentLoader

// Load runs every loader and stops at the first error.
func (m MultiLoader) Load(ctx context.Context) ([]rag.Document, error) {
	var docs []rag.Document
	for _, l := range m {
		loaded, err := l.Load(ctx)
		if err != nil {
			return nil, err
		}
		docs = append(docs, loaded...)
	}
	return docs, nil
}

// FromSources builds a loader for a mixed list of sources: http(s) URLs go
// through one WebLoader, anything else is read as a local text file.
func FromSources(sources []string, opts ...WebLoaderOption) rag.DocumentLoader {
	var urls []string
	var loaders MultiLoader
	for _, src := range sources {
		src = strings.TrimSpace(src)
		switch {
		case src == "":
		case strings.HasPrefix(src, "http://"), strings.HasPrefix(src, "https://"):
			urls = append(urls, src)
		default:
			loaders = append(loaders, NewTextLoader(src))
		}
	}
	if len(urls) > 0 {
		loaders = append(MultiLoader{NewWebLoader(urls, opts...)}, loaders...)
	}
	return loaders
}
