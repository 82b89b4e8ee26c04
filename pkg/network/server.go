// Package network provides the TCP line intake. Clients connect,
// send one ADDRESS:FUNCTION:MESSAGE line per page, and get back a
// one-line OK or ERR reply per submission.
package network

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"strings"
	"sync"

	"github.com/dbehnke/pocsag-nexus/pkg/config"
	"github.com/dbehnke/pocsag-nexus/pkg/logger"
	"github.com/dbehnke/pocsag-nexus/pkg/metrics"
	"github.com/dbehnke/pocsag-nexus/pkg/pocsag"
	"github.com/dbehnke/pocsag-nexus/pkg/transmit"
)

// maxLineBytes bounds a single intake line, matching the stdin reader
const maxLineBytes = 64 * 1024

// Server is the TCP intake listener
type Server struct {
	config    config.IntakeConfig
	log       *logger.Logger
	queue     *transmit.Queue
	acl       *transmit.ACL
	collector *metrics.Collector

	listener net.Listener
	// started is closed once the TCP listener is bound and ready
	started chan struct{}

	mu    sync.Mutex
	conns map[net.Conn]struct{}
}

// NewServer creates a new TCP intake server
func NewServer(cfg config.IntakeConfig, queue *transmit.Queue, log *logger.Logger) *Server {
	return &Server{
		config:  cfg,
		log:     log.WithComponent("network.intake"),
		queue:   queue,
		started: make(chan struct{}),
		conns:   make(map[net.Conn]struct{}),
	}
}

// SetACL restricts which addresses this intake accepts
func (s *Server) SetACL(acl *transmit.ACL) {
	s.acl = acl
}

// SetCollector attaches a metrics collector
func (s *Server) SetCollector(collector *metrics.Collector) {
	s.collector = collector
}

// Start starts the server and begins accepting connections
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.listener = listener
	// Signal that the server is ready to accept connections
	select {
	case <-s.started: // already closed
	default:
		close(s.started)
	}
	defer func() {
		_ = s.listener.Close()
	}()

	s.log.Info("Intake server started",
		logger.String("addr", listener.Addr().String()))

	errChan := make(chan error, 1)
	go func() {
		errChan <- s.acceptLoop(ctx)
	}()

	// Wait for context cancellation or error
	select {
	case <-ctx.Done():
		_ = s.listener.Close()
		s.closeConns()
		return ctx.Err()
	case err := <-errChan:
		return err
	}
}

// WaitStarted blocks until the TCP listener is bound or the context is canceled
func (s *Server) WaitStarted(ctx context.Context) error {
	select {
	case <-s.started:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Addr returns the local address the server is bound to. It should be
// called after WaitStarted.
func (s *Server) Addr() (net.Addr, error) {
	if s.listener == nil {
		return nil, fmt.Errorf("server not started")
	}
	return s.listener.Addr(), nil
}

// acceptLoop accepts connections until the listener closes
func (s *Server) acceptLoop(ctx context.Context) error {
	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
				return fmt.Errorf("accept failed: %w", err)
			}
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			s.handleConn(conn)
		}()
	}
}

// handleConn reads intake lines from one client until it disconnects
func (s *Server) handleConn(conn net.Conn) {
	defer func() {
		_ = conn.Close()
	}()
	s.trackConn(conn)
	defer s.untrackConn(conn)

	remote := conn.RemoteAddr().String()
	s.log.Info("Client connected", logger.String("remote", remote))

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		reply := s.handleLine(line)
		if _, err := fmt.Fprintf(conn, "%s\n", reply); err != nil {
			s.log.Warn("Failed to write reply",
				logger.Error(err),
				logger.String("remote", remote))
			return
		}
	}
	if err := scanner.Err(); err != nil {
		// Shutdown closes connections under the reader; not worth more
		// than a debug line
		s.log.Debug("Client read ended",
			logger.Error(err),
			logger.String("remote", remote))
	}

	s.log.Info("Client disconnected", logger.String("remote", remote))
}

// handleLine parses, checks, and enqueues one submission, returning
// the reply line
func (s *Server) handleLine(line string) string {
	msg, err := pocsag.ParseLine(line)
	if err != nil {
		s.reject()
		return fmt.Sprintf("ERR %v", err)
	}
	if err := msg.Validate(); err != nil {
		s.reject()
		return fmt.Sprintf("ERR %v", err)
	}

	if s.acl != nil && !s.acl.Check(msg.Address) {
		s.reject()
		s.log.Warn("Address denied by ACL", logger.Uint32("address", msg.Address))
		return "ERR address denied"
	}

	if err := s.queue.Enqueue(transmit.Page{Message: msg, Source: "tcp"}); err != nil {
		s.reject()
		if err == transmit.ErrQueueFull {
			return "ERR queue full"
		}
		return "ERR queue closed"
	}

	if s.collector != nil {
		s.collector.SetQueueDepth(s.queue.Depth())
	}
	return "OK"
}

func (s *Server) reject() {
	if s.collector != nil {
		s.collector.PageRejected("tcp")
	}
}

func (s *Server) trackConn(conn net.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conns[conn] = struct{}{}
}

func (s *Server) untrackConn(conn net.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.conns, conn)
}

// closeConns force-closes open client connections during shutdown
func (s *Server) closeConns() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.conns {
		_ = conn.Close()
	}
}
