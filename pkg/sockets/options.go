package sockets

import "time"

func WithPingInterval(d time.Duration) func(*Conn) {
	return func(s *Conn) {
		s.pingInterval = d
	}
}

// WithReadTimeout closes the connection when nothing, pongs included, arrives within d.
func WithReadTimeout(d time.Duration) func(*Conn) {
	return func(s *Conn) {
		s.readTimeout = d
	}
}

func WithHandshakeTimeout(d time.Duration) func(*Conn) {
	return func(s *Conn) {
		s.handshakeTimeout = d
	}
}

func WithMaxMessageSize(size int64) func(*Conn) {
	return func(s *Conn) {
		s.maxMessageSize = size
	}
}

func InsecureSkipVerify() func(*Conn) {
	return func(s *Conn) {
		s.sslSkipVerify = true
	}
}

func OnMessage(f func([]byte, Connection)) func(*Conn) {
	return func(s *Conn) {
		s.onMessage = f
	}
}

func OnError(f func(error)) func(*Conn) {
	return func(s *Conn) {
		s.onError = f
	}
}

func OnConnected(f func(Connection)) func(*Conn) {
	return func(s *Conn) {
		s.onConnected = f
	}
}
