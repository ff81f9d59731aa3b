// Package log provides secure logging built on the standard slog package.
//
// The SecureHandler wraps any slog.Handler and masks attribute values
// before they are written:
//   - credentials (Authorization, Cookie, tokens, passwords, API keys)
//   - network identifiers (IP and MAC addresses, gateways, DNS servers)
//
// Values are checked by key name and by content, so an IP address logged
// under an innocuous key such as "value" is still masked. Facts collected
// from the machine routinely contain both kinds of data (pip freeze may
// reference private index URLs with tokens, ipconfig prints addresses),
// and logs are often pasted into issues or LLM prompts.
//
// # Usage
//
//	logger := log.NewSecureLogger(os.Stderr, verbose)
//	slog.SetDefault(logger)
//
//	logger.Debug("collected", "ip", "192.168.0.2") // ip=***REDACTED***
package log
