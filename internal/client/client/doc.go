// Package client talks to the remote sync server. It exposes the Client
// interface consumed by the service layer, an HTTP/JSON implementation, and
// the wiring that opens the local database and builds the repositories.
package client
