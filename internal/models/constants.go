package models

const (
	HTMLTagRegex      = `<[^<]+?>`
	ContextSeparator  = "\n\n"
	SourceLineFormat  = "[Source: %s, page %d]"
	NotFoundAnswer    = "I couldn't find that information in the uploaded documents"
	SourcePreviewLen  = 200
	SourcePreviewMark = "..."
	VectorStoreType   = "chromem"
)

// Separators used by the chunker, coarsest first. The empty separator cuts raw characters.
var ChunkSeparators = []string{"\n\n", "\n", ". ", " ", ""}

var (
	RAGPromptTemplate = `You are a helpful research assistant. Use the following pieces of context from academic papers to answer the question.

Important instructions:
- Only use information from the provided context to answer the question
- If you don't know the answer based on the context, say '` + NotFoundAnswer + `'
- When citing information, mention the source like 'According to the paper...' or 'Based on the document...'
- Be precise and scholarly in your responses
- If the context contains page numbers, reference them in your answer

Context:
%s`
)
