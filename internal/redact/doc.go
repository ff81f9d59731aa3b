// Package redact masks network identifiers before facts are displayed or saved.
//
// Two kinds of input are handled:
//   - ipconfig /all output (Windows, English and Korean locales), where a
//     sensitive line is "<label> . . . : <value>" and the value is replaced
//   - ip addr output (Linux), where addresses follow the inet, inet6 and
//     link/ keywords and each address token is replaced
//
// The same address patterns back IsSensitiveValue, which the logger uses
// to keep addresses out of log output.
package redact
