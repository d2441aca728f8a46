// Package protocol defines the JSON-RPC 2.0 envelope types, error codes
// and MCP request/response payloads exchanged between the server and its
// host client.
package protocol
