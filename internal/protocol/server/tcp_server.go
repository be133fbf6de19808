package server

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"scouttrack/internal/core/model"
	"scouttrack/internal/protocol/h02"
)

// Ingestor receives decoded fixes keyed by device id.
type Ingestor interface {
	Ingest(deviceID string, fix model.Fix) error
}

const (
	maxMessageSize = 4096
	idleTimeout    = 5 * time.Minute
)

// TCPServer accepts H02 tracker connections and forwards every decoded fix
// to an Ingestor.
type TCPServer struct {
	addr       string
	listener   net.Listener
	h02Decoder *h02.Decoder
	ingestor   Ingestor
	log        zerolog.Logger

	mu    sync.Mutex
	conns map[net.Conn]struct{}
	wg    sync.WaitGroup
}

func NewTCPServer(addr string, ingestor Ingestor, log zerolog.Logger) *TCPServer {
	return &TCPServer{
		addr:       addr,
		h02Decoder: h02.NewDecoder(),
		ingestor:   ingestor,
		log:        log.With().Str("component", "h02").Logger(),
		conns:      make(map[net.Conn]struct{}),
	}
}

func (s *TCPServer) Start() error {
	var err error
	s.listener, err = net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to start TCP server: %w", err)
	}

	s.log.Info().Str("addr", s.listener.Addr().String()).Msg("TCP server listening")

	s.wg.Add(1)
	go s.acceptConnections()
	return nil
}

// Addr is the bound address, useful when listening on port 0.
func (s *TCPServer) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Stop closes the listener and every open connection, then waits for the
// handlers to return.
func (s *TCPServer) Stop() {
	if s.listener != nil {
		s.listener.Close()
	}
	s.mu.Lock()
	for conn := range s.conns {
		conn.Close()
	}
	s.mu.Unlock()
	s.wg.Wait()
}

func (s *TCPServer) acceptConnections() {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			s.log.Error().Err(err).Msg("error accepting connection")
			continue
		}

		s.mu.Lock()
		s.conns[conn] = struct{}{}
		s.mu.Unlock()

		s.wg.Add(1)
		go s.handleConnection(conn)
	}
}

func (s *TCPServer) handleConnection(conn net.Conn) {
	defer s.wg.Done()
	defer func() {
		s.mu.Lock()
		delete(s.conns, conn)
		s.mu.Unlock()
		conn.Close()
	}()

	log := s.log.With().Str("remote", conn.RemoteAddr().String()).Logger()
	log.Debug().Msg("new connection")

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 512), maxMessageSize)
	scanner.Split(splitMessages)

	for {
		_ = conn.SetReadDeadline(time.Now().Add(idleTimeout))
		if !scanner.Scan() {
			break
		}
		s.handleMessage(log, scanner.Bytes())
	}
	if err := scanner.Err(); err != nil && !errors.Is(err, net.ErrClosed) {
		log.Debug().Err(err).Msg("connection closed")
	}
}

func (s *TCPServer) handleMessage(log zerolog.Logger, msg []byte) {
	data, err := s.h02Decoder.Decode(msg)
	if err != nil {
		log.Warn().Err(err).Msg("error decoding H02 data")
		return
	}
	if !data.Valid && !data.SOS {
		log.Debug().Str("device", data.DeviceID).Msg("skipping fix without GPS lock")
		return
	}

	if err := s.ingestor.Ingest(data.DeviceID, s.h02Decoder.ToFix(data)); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			log.Warn().Str("device", data.DeviceID).Msg("fix from unknown device")
			return
		}
		log.Error().Err(err).Str("device", data.DeviceID).Msg("failed to ingest fix")
		return
	}
	log.Debug().
		Str("device", data.DeviceID).
		Float64("lat", data.Latitude).
		Float64("lng", data.Longitude).
		Bool("sos", data.SOS).
		Msg("received H02 position")
}

// splitMessages is a bufio.SplitFunc yielding one '#'-terminated H02
// message at a time, terminator included.
func splitMessages(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexByte(data, '#'); i >= 0 {
		return i + 1, bytes.TrimSpace(data[:i+1]), nil
	}
	if atEOF {
		return len(data), bytes.TrimSpace(data), nil
	}
	return 0, nil, nil
}
