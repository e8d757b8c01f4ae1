// Package common provides shared types and constants used across the
// wakesync client-daemon communication layer.
package common

// Environment variable names for configuration.
const (
	// SocketPathEnv is the environment variable for a custom socket path.
	SocketPathEnv = "WAKED_SOCKET_PATH"

	// TCPPortEnv is the environment variable for a custom TCP port.
	TCPPortEnv = "WAKED_TCP_PORT"

	// DBPathEnv is the environment variable for the schedule database path.
	DBPathEnv = "WAKED_DB_PATH"

	// WSPortEnv is the environment variable for the WebSocket RPC port.
	WSPortEnv = "WAKED_WS_PORT"

	// RPCSecretEnv is the environment variable for the WebSocket RPC
	// bearer token. Empty disables the RPC endpoint.
	RPCSecretEnv = "WAKED_RPC_SECRET"

	// DebugEnv is the environment variable to enable debug logging.
	DebugEnv = "WAKED_DEBUG"
)
