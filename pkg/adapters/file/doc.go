// Package file provides filesystem adapters: a rule loader for text and YAML rule
// files, and a checkpoint store that keeps one JSON document per checkpoint.
package file
