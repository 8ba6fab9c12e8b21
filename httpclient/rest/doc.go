// Package rest adds typed JSON helpers on top of httpclient.
//
//	resp, err := rest.Get[contextInfo](ctx, client, "/api/extra/true_max_context_length")
package rest
