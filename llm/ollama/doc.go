// Package ollama implements the llm.Provider for an ollama server.
//
// Completions are posted to /api/generate and read back as one JSON object
// per line. Each line carries a "response" fragment; the line with
// "done": true also carries the run statistics, surfaced without ollama's
// bookkeeping keys. A line with an "error" field aborts the call.
//
// LoadModel only records the model name and context window; both are sent
// with every request.
package ollama
