package feed

import (
	"bufio"
	"errors"
	"io"
	"net"
	"sync"

	"bookreviews/pkg/logger"
)

// Server accepts TCP subscribers for the review feed. Anything a client sends
// is read and discarded so disconnects are noticed.
type Server struct {
	Addr string
	Hub  *Hub

	mu sync.Mutex
	ln net.Listener
}

func NewServer(addr string, hub *Hub) *Server {
	return &Server{Addr: addr, Hub: hub}
}

// Listen binds the address without accepting yet. Run calls it when needed.
func (s *Server) Listen() (net.Addr, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln != nil {
		return s.ln.Addr(), nil
	}
	ln, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return nil, err
	}
	s.ln = ln
	return ln.Addr(), nil
}

// Run accepts connections until Close. It returns nil after Close.
func (s *Server) Run() error {
	addr, err := s.Listen()
	if err != nil {
		return err
	}
	logger.Log.Infof("feed: listening on %s", addr)

	s.mu.Lock()
	ln := s.ln
	s.mu.Unlock()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			logger.Log.WithError(err).Warn("feed: accept")
			continue
		}

		_, _ = conn.Write(s.Hub.welcome("tcp"))
		s.Hub.AddTCP(conn)
		logger.Log.WithField("remote", conn.RemoteAddr().String()).Info("feed: tcp client connected")

		go s.drain(conn)
	}
}

func (s *Server) drain(c net.Conn) {
	defer func() {
		s.Hub.RemoveTCP(c)
		logger.Log.WithField("remote", c.RemoteAddr().String()).Info("feed: tcp client disconnected")
	}()
	_, _ = io.Copy(io.Discard, bufio.NewReader(c))
}

func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return nil
	}
	return s.ln.Close()
}
