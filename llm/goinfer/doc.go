// Package goinfer implements llm.Provider for a goinfer server.
//
// Events carry a msg_type discriminator: "token" events hold a fragment in
// content, "system" events mark start_emitting (with timing metadata) and the
// terminal result, and "error" events abort the call.
package goinfer
