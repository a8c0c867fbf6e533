package chains

const retrievalGraderSystem = `You are a grader assessing relevance of a retrieved document to a user question.
If the document contains keyword(s) or semantic meaning related to the question, grade it as relevant.
Give a binary score 'yes' or 'no' score to indicate whether the document is relevant to the question.`

const retrievalGraderHuman = "Retrieved document: \n\n %s \n\n User question: %s"

const hallucinationGraderSystem = `You are a grader assessing whether an LLM generation is grounded in / supported by a set of retrieved facts.
Give a binary score 'yes' or 'no'. 'Yes' means that the answer is grounded in / supported by the set of facts.`

const hallucinationGraderHuman = "Set of facts: \n\n %s \n\n LLM generation: %s"

const answerGraderSystem = `You are a grader assessing whether an answer addresses / resolves a question.
Give a binary score 'yes' or 'no'. 'Yes' means that the answer resolves the question.`

const answerGraderHuman = "User question: \n\n %s \n\n LLM generation: %s"

const ragPrompt = `You are an assistant for question-answering tasks. Use the following pieces of retrieved context to answer the question. If you don't know the answer, just say that you don't know. Use three sentences maximum and keep the answer concise.
Question: %s
Context: %s
Answer:`
