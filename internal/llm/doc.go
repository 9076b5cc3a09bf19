// Package llm checks individual courses against free-text institutional
// transfer policy documents using LLM APIs.
package llm
