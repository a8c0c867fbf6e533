// Package chains wraps a langchaingo llms.Model into the four model-backed
// collaborators of the self-RAG loop: a document relevance grader, an answer
// generator, a hallucination grader and an answer grader.
//
// Graders force a single function call whose only argument is binary_score.
// Providers that ignore tool choice are still supported: the score is then
// read from a JSON object or a bare "yes"/"no" in the text reply.
//
//	model, _ := openai.New(openai.WithModel("gpt-4o-mini"))
//	grader := chains.NewDocumentGrader(model)
//	ok, err := grader.Relevant(ctx, "what is RAG?", passage)
package chains
