// Package app contains the core application logic. It wires the template
// compiler, the module loader and the observers from a validated
// configuration, decoupled from any specific entrypoint like a CLI or
// server.
package app
