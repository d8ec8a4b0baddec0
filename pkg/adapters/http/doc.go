// Package http exposes the expansion engine over a JSON API described by an
// embedded OpenAPI document.
package http
