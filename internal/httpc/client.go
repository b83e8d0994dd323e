// Package httpc builds the network clients the commands share, so every
// dial carries connect and handshake timeouts.
package httpc

import (
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// Default timeouts for upstream dials.
const (
	DefaultConnectTimeout   = 10 * time.Second
	DefaultKeepAlive        = 30 * time.Second
	DefaultHandshakeTimeout = 10 * time.Second
	DefaultBufferSize       = 16 * 1024
)

// NewDialer returns a websocket dialer with TCP connect, keep-alive and
// handshake timeouts set. A zero handshake uses DefaultHandshakeTimeout.
func NewDialer(handshake time.Duration) *websocket.Dialer {
	if handshake <= 0 {
		handshake = DefaultHandshakeTimeout
	}
	return &websocket.Dialer{
		Proxy: http.ProxyFromEnvironment,
		NetDialContext: (&net.Dialer{
			Timeout:   DefaultConnectTimeout,
			KeepAlive: DefaultKeepAlive,
		}).DialContext,
		HandshakeTimeout: handshake,
		ReadBufferSize:   DefaultBufferSize,
		WriteBufferSize:  DefaultBufferSize,
	}
}
