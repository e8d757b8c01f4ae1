// Package wakecli is the client library for the waked alarm daemon.
// It speaks the framed JSON protocol over the daemon's Unix socket
// (TCP fallback) and exposes typed wrappers for every daemon command.
package wakecli

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"
)

type Client struct {
	mu   *sync.RWMutex
	d    *Dispatcher
	conn net.Conn
}

// NewClient connects to the daemon over the Unix socket, falling back
// to TCP when the socket is unavailable.
func NewClient() (*Client, error) {
	conn, err := net.Dial("unix", socketPath())
	if err != nil {
		conn, err = net.Dial("tcp", tcpAddress())
		if err != nil {
			return nil, fmt.Errorf("error connecting to daemon: %s", err.Error())
		}
	}
	return &Client{
		conn: conn,
		mu:   &sync.RWMutex{},
		d:    &Dispatcher{},
	}, nil
}

// AddHandler registers a callback for a broadcast update type.
func (c *Client) AddHandler(utype string, h Handler) {
	if c.d.Handlers == nil {
		c.d.Handlers = make(map[string]Handler)
	}
	c.d.Handlers[utype] = h
}

// Listen blocks reading broadcast updates from the daemon and
// dispatching them to registered handlers. Returns when a handler
// reports ErrDisconnect or the connection drops.
func (c *Client) Listen() (err error) {
	defer c.conn.Close()
	for {
		c.mu.RLock()
		var buf []byte
		buf, err = read(c.conn)
		if err != nil {
			c.mu.RUnlock()
			err = fmt.Errorf("error reading: %s", err.Error())
			return
		}
		err = c.d.process(buf)
		if err != nil {
			c.mu.RUnlock()
			if err == ErrDisconnect {
				err = nil
				break
			}
			err = fmt.Errorf("error processing: %s", err.Error())
			return
		}
		c.mu.RUnlock()
	}
	return
}

// Close closes the connection to the daemon.
func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) invoke(method string, message any) (json.RawMessage, error) {
	// block the updates listener while invoking a method to retrieve
	// the reply here instead
	c.mu.Lock()
	defer c.mu.Unlock()
	buf, err := json.Marshal(&Request{
		Method:  method,
		Message: message,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to invoke %s: %s", method, err.Error())
	}
	err = write(c.conn, buf)
	if err != nil {
		return nil, fmt.Errorf("failed to invoke %s: %s", method, err.Error())
	}
	buf, err = read(c.conn)
	if err != nil {
		return nil, fmt.Errorf("failed to invoke %s: %s", method, err.Error())
	}
	var res Response
	err = json.Unmarshal(buf, &res)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %s", method, err.Error())
	}
	if !res.Ok {
		return nil, errors.New(res.Error)
	}
	return res.Update.Message, nil
}
