// Package output provides output formatting for the authgate CLI.
//
// This package handles all CLI output formatting:
//
//   - formatter.go: Formatter interface plus JSON and YAML encoders
//   - table.go: aligned table rendering
//   - spinner.go: progress animation for network calls
//
// Table output is the human default; json and yaml exist for
// scripting.
package output
