// Package selfrag implements a self-correcting retrieval-augmented
// generation workflow on top of the graph package.
//
// A run retrieves passages, grades each for relevance, supplements them with
// a web search when any passage was dropped, generates an answer and then
// grades the answer twice: first for groundedness in the passages, then for
// whether it resolves the question.
//
//	retrieve -> grade_documents -> [websearch] -> generate -> END
//	                                   ^             |
//	                                   | not useful  | not supported
//	                                   +-------------+----> generate
//
// Every failed grade consumes one generation attempt. Once
// Options.MaxGenerations attempts are spent the run ends with the last
// generation as a best-effort answer: OutcomeUngrounded when the final check
// failed on groundedness, OutcomeUnresolved when it failed on usefulness.
//
// Collaborators are small interfaces so the workflow can be driven by the
// LLM-backed implementations in the chains package or by test doubles.
//
//	wf, err := selfrag.New(selfrag.Collaborators{
//		Retriever:       retriever,
//		Relevance:       chains.NewDocumentGrader(model),
//		Generator:       chains.NewGenerator(model),
//		Groundedness:    chains.NewHallucinationGrader(model),
//		AnswerRelevance: chains.NewAnswerGrader(model),
//		WebSearch:       search,
//	}, selfrag.Options{})
//	res, err := wf.Run(ctx, "What is retrieval-augmented generation?")
//
// Only web search failures are recovered; every other collaborator error
// ends the run with an *ExternalServiceError.
package selfrag
