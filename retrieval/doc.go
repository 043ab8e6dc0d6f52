// Package retrieval augments user messages with relevant stored content.
//
// A Retriever embeds the user's question, queries a vector store for the
// most relevant segments, and produces both the augmented message text and
// the matched segments so callers can surface them as source citations.
package retrieval
