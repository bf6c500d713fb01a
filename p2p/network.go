//
// Copyright (c) 2020-2026 Markku Rossi
//
// All rights reserved.
//

package p2p

import (
	"fmt"
	"net"
	"time"

	"github.com/markkurossi/sigmaot/logging"
)

// RetryDelay defines the delay between failed connection attempts.
var RetryDelay = time.Second

// Dial connects to the peer at addr and identifies the connection with
// the id. Failed connection attempts are retried every RetryDelay
// until the timeout expires.
func Dial(addr string, id int, timeout time.Duration, log logging.Logger) (
	*Conn, error) {

	log = logging.OrDiscard(log)
	deadline := time.Now().Add(timeout)
	for {
		log.Debug("connecting", "addr", addr, "id", id)
		nc, err := net.Dial("tcp", addr)
		if err != nil {
			if time.Now().Add(RetryDelay).After(deadline) {
				return nil, fmt.Errorf("p2p: connect to %s failed: %w",
					addr, err)
			}
			log.Info("connect failed, retrying", "addr", addr,
				"delay", RetryDelay, "err", err)
			<-time.After(RetryDelay)
			continue
		}
		log.Debug("connected", "addr", addr, "id", id)
		conn := NewConn(nc)

		if err := conn.SendUint32(id); err != nil {
			conn.Close()
			return nil, err
		}
		if err := conn.Flush(); err != nil {
			conn.Close()
			return nil, err
		}
		return conn, nil
	}
}

// Listener accepts peer connections.
type Listener struct {
	listener net.Listener
	log      logging.Logger
}

// Listen creates a new listener for the TCP address addr.
func Listen(addr string, log logging.Logger) (*Listener, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return &Listener{
		listener: listener,
		log:      logging.OrDiscard(log),
	}, nil
}

// Addr returns the listener's network address.
func (l *Listener) Addr() net.Addr {
	return l.listener.Addr()
}

// Close closes the listener.
func (l *Listener) Close() error {
	return l.listener.Close()
}

// Accept waits for the next peer connection. The function returns the
// connection and the connection id the peer sent.
func (l *Listener) Accept() (*Conn, int, error) {
	nc, err := l.listener.Accept()
	if err != nil {
		return nil, 0, err
	}
	conn := NewConn(nc)

	id, err := conn.ReceiveUint32()
	if err != nil {
		l.log.Warn("I/O error", "remote", nc.RemoteAddr(), "err", err)
		conn.Close()
		return nil, 0, err
	}
	l.log.Debug("accepted", "remote", nc.RemoteAddr(), "id", id)

	return conn, id, nil
}
