// Package config provides configuration structures and utilities for llmctx.
// It defines where data.json lives, how long collectors may run, the ping
// target, the web listen address and the choices offered by the form.
package config
