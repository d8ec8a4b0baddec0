// Package mcp exposes the expansion engine as Model Context Protocol tools and resources.
package mcp
