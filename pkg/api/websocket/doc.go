// Package websocket provides the catalog activity stream over WebSocket.
package websocket
