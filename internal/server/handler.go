package server

import (
	"encoding/json"

	"github.com/wakesync/wakesync/common"
)

// HandlerFunc is the signature for command handlers. It receives the
// requesting connection, the client pool, and the raw JSON message
// body, and returns the response update type, payload, and error.
type HandlerFunc func(
	conn *SyncConn,
	pool *Pool,
	body json.RawMessage,
) (
	common.UpdateType,
	any,
	error,
)
