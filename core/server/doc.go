// Package server holds the HTTP control server configuration.
//
// The server exposes the sync triggers, the sync status and the id codec to local
// tooling. The Config struct defines the bind address, the API key guarding every
// route, and the interval of scheduled background cycles.
package server
