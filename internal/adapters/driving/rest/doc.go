// Package rest exposes the core services over an HTTP JSON API.
//
// The server is a driving adapter: it owns request decoding, response
// shaping and status mapping, and delegates all behaviour to the
// driving ports. AI-backed endpoints sit behind a shared rate limiter
// so a misbehaving client cannot burn through provider quota.
package rest
