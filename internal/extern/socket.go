package extern

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nbeerbower/hemlock/internal/heap"
)

// NetDialer is the default SocketDialer: `tcp://host:port` and
// `unix://path` dial through net.Dial directly, `ws://host:port/path`
// dials through gorilla/websocket and wraps the resulting connection
// behind the same net.Conn-shaped Socket handle so the rest of the
// runtime never needs to know the transport underneath (grounded on
// ProbeChain-go-probe's use of gorilla/websocket for its own RPC
// transport, per SPEC_FULL.md §6).
type NetDialer struct{}

func NewNetDialer() *NetDialer { return &NetDialer{} }

func (d *NetDialer) Dial(address string) (*heap.Socket, error) {
	scheme, rest := splitScheme(address)
	switch scheme {
	case "ws", "wss":
		conn, _, err := websocket.DefaultDialer.Dial(address, nil)
		if err != nil {
			return nil, fmt.Errorf("dial %s: %w", address, err)
		}
		c := conn.UnderlyingConn()
		host, portStr, _ := net.SplitHostPort(c.RemoteAddr().String())
		port, _ := strconv.Atoi(portStr)
		return heap.NewSocketConn(wsConn{conn}, host, port), nil
	case "unix":
		c, err := net.Dial("unix", rest)
		if err != nil {
			return nil, fmt.Errorf("dial %s: %w", address, err)
		}
		return heap.NewSocketConn(c, rest, 0), nil
	case "tcp", "":
		c, err := net.Dial("tcp", rest)
		if err != nil {
			return nil, fmt.Errorf("dial %s: %w", address, err)
		}
		host, portStr, _ := net.SplitHostPort(rest)
		port, _ := strconv.Atoi(portStr)
		return heap.NewSocketConn(c, host, port), nil
	default:
		return nil, fmt.Errorf("dial: unsupported scheme %q", scheme)
	}
}

func (d *NetDialer) Listen(address string) (*heap.Socket, error) {
	scheme, rest := splitScheme(address)
	network := "tcp"
	if scheme == "unix" {
		network = "unix"
	}
	l, err := net.Listen(network, rest)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", address, err)
	}
	host, portStr, _ := net.SplitHostPort(l.Addr().String())
	port, _ := strconv.Atoi(portStr)
	return heap.NewSocketListener(l, host, port), nil
}

func (d *NetDialer) Accept(l *heap.Socket) (*heap.Socket, error) {
	ln := l.Listener()
	if ln == nil {
		return nil, fmt.Errorf("accept: socket is not a listener or is closed")
	}
	c, err := ln.Accept()
	if err != nil {
		return nil, err
	}
	host, portStr, _ := net.SplitHostPort(c.RemoteAddr().String())
	port, _ := strconv.Atoi(portStr)
	return heap.NewSocketConn(c, host, port), nil
}

func splitScheme(address string) (scheme, rest string) {
	if u, err := url.Parse(address); err == nil && (u.Scheme == "ws" || u.Scheme == "wss") && u.Host != "" {
		return u.Scheme, address
	}
	if i := strings.Index(address, "://"); i >= 0 {
		return address[:i], address[i+3:]
	}
	return "", address
}

// wsConn adapts a *websocket.Conn's underlying net.Conn so the socket
// method table (eval/methods we may add later) can treat it uniformly;
// today it only needs to satisfy net.Conn for Socket's bookkeeping.
type wsConn struct {
	*websocket.Conn
}

func (w wsConn) Read(b []byte) (int, error) {
	_, data, err := w.Conn.ReadMessage()
	if err != nil {
		return 0, err
	}
	return copy(b, data), nil
}

func (w wsConn) Write(b []byte) (int, error) {
	if err := w.Conn.WriteMessage(websocket.BinaryMessage, b); err != nil {
		return 0, err
	}
	return len(b), nil
}

func (w wsConn) SetDeadline(t time.Time) error {
	if err := w.Conn.SetReadDeadline(t); err != nil {
		return err
	}
	return w.Conn.SetWriteDeadline(t)
}
