// Package logger provides structured logging for authgate.
//
// It wraps log/slog with JSON or text output, runtime level
// adjustment, and automatic redaction: platform tokens (agat_, agrt_
// prefixes) are masked and attributes with key names such as password
// or secret are replaced outright before any entry reaches a sink.
package logger
