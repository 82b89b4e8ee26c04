package network

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/dbehnke/pocsag-nexus/pkg/config"
	"github.com/dbehnke/pocsag-nexus/pkg/logger"
	"github.com/dbehnke/pocsag-nexus/pkg/transmit"
)

func TestServer_New(t *testing.T) {
	cfg := config.IntakeConfig{
		Enabled: true,
		Host:    "127.0.0.1",
		Port:    16180,
	}

	log := logger.New(logger.Config{Level: "info"})
	srv := NewServer(cfg, transmit.NewQueue(4), log)

	if srv == nil {
		t.Fatal("NewServer returned nil")
	}

	if srv.config.Port != 16180 {
		t.Errorf("Expected port 16180, got %d", srv.config.Port)
	}
}

func TestServer_StartStop(t *testing.T) {
	cfg := config.IntakeConfig{
		Enabled: true,
		Host:    "127.0.0.1",
		Port:    0, // Use any available port
	}

	log := logger.New(logger.Config{Level: "info"})
	srv := NewServer(cfg, transmit.NewQueue(4), log)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	// Start server in goroutine
	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start(ctx)
	}()

	// Wait for server to report started
	if err := srv.WaitStarted(ctx); err != nil {
		t.Fatalf("server failed to start: %v", err)
	}

	// Cancel context to stop server
	cancel()

	// Wait for server to stop
	select {
	case err := <-errChan:
		if err != nil && err != context.Canceled && err != context.DeadlineExceeded {
			t.Errorf("Unexpected error from server: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Error("Server did not stop in time")
	}
}

// startTestServer runs an intake server on an ephemeral port and
// returns its address plus the queue it feeds
func startTestServer(t *testing.T, queueSize int, aclRule string) (string, *transmit.Queue, context.CancelFunc) {
	t.Helper()

	cfg := config.IntakeConfig{Enabled: true, Host: "127.0.0.1", Port: 0}
	log := logger.New(logger.Config{Level: "error"})
	queue := transmit.NewQueue(queueSize)
	srv := NewServer(cfg, queue, log)

	if aclRule != "" {
		acl, err := transmit.ParseACL(aclRule)
		if err != nil {
			t.Fatalf("Failed to parse ACL: %v", err)
		}
		srv.SetACL(acl)
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		_ = srv.Start(ctx)
	}()

	if err := srv.WaitStarted(ctx); err != nil {
		cancel()
		t.Fatalf("server failed to start: %v", err)
	}

	addr, err := srv.Addr()
	if err != nil {
		cancel()
		t.Fatalf("failed to get server address: %v", err)
	}

	return addr.String(), queue, cancel
}

// sendLine writes one intake line and returns the server's reply
func sendLine(t *testing.T, conn net.Conn, reader *bufio.Reader, line string) string {
	t.Helper()

	if _, err := fmt.Fprintf(conn, "%s\n", line); err != nil {
		t.Fatalf("Failed to send line: %v", err)
	}
	reply, err := reader.ReadString('\n')
	if err != nil {
		t.Fatalf("Failed to read reply: %v", err)
	}
	return reply[:len(reply)-1]
}

func TestServer_AcceptsValidLine(t *testing.T) {
	addr, queue, cancel := startTestServer(t, 4, "")
	defer cancel()

	conn, err := net.Dial("tcp", addr)
	if err != nil {
		t.Fatalf("Failed to dial server: %v", err)
	}
	defer conn.Close()
	reader := bufio.NewReader(conn)

	reply := sendLine(t, conn, reader, "1234567:3:CALL DISPATCH")
	if reply != "OK" {
		t.Fatalf("Expected OK, got %q", reply)
	}

	select {
	case page := <-queue.C():
		if page.Message.Address != 1234567 {
			t.Errorf("Expected address 1234567, got %d", page.Message.Address)
		}
		if page.Message.Text != "CALL DISPATCH" {
			t.Errorf("Expected text CALL DISPATCH, got %q", page.Message.Text)
		}
		if page.Source != "tcp" {
			t.Errorf("Expected source tcp, got %s", page.Source)
		}
	case <-time.After(time.Second):
		t.Fatal("Page did not reach the queue")
	}
}

func TestServer_RejectsMalformedLine(t *testing.T) {
	addr, queue, cancel := startTestServer(t, 4, "")
	defer cancel()

	conn, err := net.Dial("tcp", addr)
	if err != nil {
		t.Fatalf("Failed to dial server: %v", err)
	}
	defer conn.Close()
	reader := bufio.NewReader(conn)

	tests := []struct {
		name string
		line string
	}{
		{name: "no colon", line: "not a page"},
		{name: "bad address", line: "abc:3:hello"},
		{name: "bad function", line: "123:9:hello"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reply := sendLine(t, conn, reader, tt.line)
			if len(reply) < 3 || reply[:3] != "ERR" {
				t.Errorf("Expected ERR reply, got %q", reply)
			}
		})
	}

	if depth := queue.Depth(); depth != 0 {
		t.Errorf("Expected empty queue after rejections, got depth %d", depth)
	}
}

func TestServer_ACLDeniesAddress(t *testing.T) {
	addr, queue, cancel := startTestServer(t, 4, "DENY:1000-2000")
	defer cancel()

	conn, err := net.Dial("tcp", addr)
	if err != nil {
		t.Fatalf("Failed to dial server: %v", err)
	}
	defer conn.Close()
	reader := bufio.NewReader(conn)

	reply := sendLine(t, conn, reader, "1500:3:blocked")
	if reply != "ERR address denied" {
		t.Errorf("Expected ERR address denied, got %q", reply)
	}

	reply = sendLine(t, conn, reader, "42:3:allowed")
	if reply != "OK" {
		t.Errorf("Expected OK for address outside deny range, got %q", reply)
	}

	if depth := queue.Depth(); depth != 1 {
		t.Errorf("Expected 1 queued page, got %d", depth)
	}
}

func TestServer_QueueFull(t *testing.T) {
	addr, _, cancel := startTestServer(t, 1, "")
	defer cancel()

	conn, err := net.Dial("tcp", addr)
	if err != nil {
		t.Fatalf("Failed to dial server: %v", err)
	}
	defer conn.Close()
	reader := bufio.NewReader(conn)

	if reply := sendLine(t, conn, reader, "1:0:first"); reply != "OK" {
		t.Fatalf("Expected OK for first page, got %q", reply)
	}
	if reply := sendLine(t, conn, reader, "2:0:second"); reply != "ERR queue full" {
		t.Errorf("Expected ERR queue full, got %q", reply)
	}
}

func TestServer_MultipleLinesOneConnection(t *testing.T) {
	addr, queue, cancel := startTestServer(t, 8, "")
	defer cancel()

	conn, err := net.Dial("tcp", addr)
	if err != nil {
		t.Fatalf("Failed to dial server: %v", err)
	}
	defer conn.Close()
	reader := bufio.NewReader(conn)

	for i := 1; i <= 3; i++ {
		reply := sendLine(t, conn, reader, fmt.Sprintf("%d:3:page %d", i, i))
		if reply != "OK" {
			t.Fatalf("Expected OK for page %d, got %q", i, reply)
		}
	}

	if depth := queue.Depth(); depth != 3 {
		t.Errorf("Expected 3 queued pages, got %d", depth)
	}
}
