package tcp

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"sync"

	"github.com/yuuma-dev/translachat/internal/chat"
)

// Handler serves one accepted connection and returns when it closes.
type Handler func(ctx context.Context, conn chat.Conn)

// Server accepts TCP connections and hands them to a Handler.
type Server struct {
	address  string
	listener net.Listener
	handle   Handler
	logger   *slog.Logger
	quit     chan struct{}
	wg       sync.WaitGroup
}

// New creates a TCP server that serves connections with handle.
func New(address string, handle Handler, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		address: address,
		handle:  handle,
		logger:  logger,
		quit:    make(chan struct{}),
	}
}

// Start starts accepting TCP connections. It blocks until Stop is called or
// the listener fails.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.address)
	if err != nil {
		return fmt.Errorf("failed to start TCP server: %w", err)
	}
	s.listener = listener

	s.logger.Info("TCP server started", "addr", listener.Addr().String())

	for {
		conn, err := listener.Accept()
		if err != nil {
			select {
			case <-s.quit:
				return nil
			default:
				s.logger.Warn("failed to accept TCP connection", "err", err)
				continue
			}
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handle(context.Background(), NewConn(conn))
		}()
	}
}

// Stop stops the server and waits for in-flight connections to finish.
func (s *Server) Stop() {
	close(s.quit)
	if s.listener != nil {
		s.listener.Close()
	}
	s.wg.Wait()
}

// Addr returns the listening address.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return ""
}
