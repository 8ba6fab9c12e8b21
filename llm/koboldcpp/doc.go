// Package koboldcpp implements llm.Provider for a koboldcpp server.
//
// Generation streams over SSE with one {"token": "..."} object per event and
// ends when the server closes the connection. LoadModel does not change the
// server: it reads the active model and context window and mirrors them.
package koboldcpp
