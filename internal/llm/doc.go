// Package llm builds classification requests, talks to text-generation
// providers, and turns their free-text answers into structured results.
// It supports Hugging Face, OpenAI, Gemini and Ollama backends with retry
// logic for transient failures.
package llm
