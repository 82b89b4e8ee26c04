package testhelpers

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/dbehnke/pocsag-nexus/pkg/config"
	"github.com/dbehnke/pocsag-nexus/pkg/logger"
	"github.com/dbehnke/pocsag-nexus/pkg/pcm"
	"github.com/dbehnke/pocsag-nexus/pkg/pocsag"
	"github.com/dbehnke/pocsag-nexus/pkg/transmit"
)

// IntegrationSuite wires a queue, transmitter, and recording sink so
// tests can push pages through the full encode pipeline and inspect
// the audio that comes out.
type IntegrationSuite struct {
	T           *testing.T
	Logger      *logger.Logger
	Ctx         context.Context
	Cancel      context.CancelFunc
	Queue       *transmit.Queue
	Sink        *BufferSink
	Transmitter *transmit.Transmitter

	runErr chan error
}

// NewIntegrationSuite creates a new integration test suite
func NewIntegrationSuite(t *testing.T) *IntegrationSuite {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)

	log := logger.New(logger.Config{
		Level:  "debug",
		Format: "text",
	})

	return &IntegrationSuite{
		T:      t,
		Logger: log,
		Ctx:    ctx,
		Cancel: cancel,
		Queue:  transmit.NewQueue(16),
		Sink:   NewBufferSink(),
		runErr: make(chan error, 1),
	}
}

// StartTransmitter runs a transmitter over the suite's queue and sink.
// Pass a nil silence generator for back-to-back output.
func (s *IntegrationSuite) StartTransmitter(renderer pcm.Renderer, silence *transmit.SilenceGenerator) *transmit.Transmitter {
	tx := transmit.NewTransmitter(s.Queue, renderer, s.Sink, silence, s.Logger)
	s.Transmitter = tx
	go func() {
		s.runErr <- tx.Run(s.Ctx)
	}()
	return tx
}

// SubmitLine parses an ADDRESS:FUNCTION:MESSAGE line and queues it
func (s *IntegrationSuite) SubmitLine(line string) error {
	msg, err := pocsag.ParseLine(line)
	if err != nil {
		return err
	}
	return s.Queue.Enqueue(transmit.Page{Message: msg, Source: "test"})
}

// DrainAndStop closes the queue, waits for the transmitter to finish
// the backlog, and returns its run error.
func (s *IntegrationSuite) DrainAndStop() error {
	s.Queue.Close()
	select {
	case err := <-s.runErr:
		return err
	case <-time.After(10 * time.Second):
		s.T.Fatal("Transmitter did not drain in time")
		return nil
	}
}

// GetFreePort gets a free port for testing
func (s *IntegrationSuite) GetFreePort() int {
	addr, err := net.ResolveTCPAddr("tcp", "localhost:0")
	if err != nil {
		s.T.Fatal(err)
	}

	listener, err := net.ListenTCP("tcp", addr)
	if err != nil {
		s.T.Fatal(err)
	}
	defer func() { _ = listener.Close() }()

	return listener.Addr().(*net.TCPAddr).Port
}

// Cleanup cleans up resources
func (s *IntegrationSuite) Cleanup() {
	s.Queue.Close()
	s.Cancel()
}

// WaitFor waits for a condition to be true
func (s *IntegrationSuite) WaitFor(condition func() bool, timeout time.Duration, message string) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	s.T.Logf("WaitFor timeout: %s", message)
	return false
}

// AssertEventually asserts that a condition becomes true within timeout
func (s *IntegrationSuite) AssertEventually(condition func() bool, timeout time.Duration, message string) {
	if !s.WaitFor(condition, timeout, message) {
		s.T.Errorf("Assertion failed: %s", message)
	}
}

// CreateDefaultConfig creates a default test configuration
func CreateDefaultConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Name:        "Test Encoder",
			Description: "Integration Test Encoder",
		},
		Transmit: config.TransmitConfig{
			BaudRate:   512,
			SampleRate: 22050,
			QueueSize:  16,
			AddressACL: "PERMIT:ALL",
		},
		Output: config.OutputConfig{
			Target: "stdout",
		},
		Stdin: config.StdinConfig{
			Enabled: true,
		},
		Intake: config.IntakeConfig{
			Enabled: false,
		},
		Web: config.WebConfig{
			Enabled: false,
		},
		Database: config.DatabaseConfig{
			Enabled: false,
		},
		Directory: config.DirectoryConfig{
			Enabled: false,
		},
		Logging: config.LoggingConfig{
			Level:  "debug",
			Format: "text",
		},
		Metrics: config.MetricsConfig{
			Enabled: false,
		},
	}
}
