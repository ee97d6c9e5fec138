package bitlog

import (
	"bufio"
	"errors"
	"io"
	"net"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/bretuobay/bitlog/internal/pool"
)

// Server serves the wire protocol over TCP, dispatching each connection to
// a worker from the configured pool.
type Server struct {
	engine Engine
	pool   pool.Pool
	log    *logrus.Entry

	mu       sync.Mutex
	listener net.Listener
	stopped  bool

	wg sync.WaitGroup
}

// NewServer wraps an engine and a worker pool.
func NewServer(engine Engine, workers pool.Pool) *Server {
	return &Server{
		engine: engine,
		pool:   workers,
		log:    logrus.WithField("component", "server"),
	}
}

// ListenAndServe binds addr and serves until Stop is called.
func (s *Server) ListenAndServe(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Serve accepts connections on ln until Stop closes it.
func (s *Server) Serve(ln net.Listener) error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		_ = ln.Close()
		return ErrClosed
	}
	s.listener = ln
	s.mu.Unlock()

	s.log.WithField("addr", ln.Addr().String()).Info("listening")

	for {
		conn, err := ln.Accept()
		if err != nil {
			s.mu.Lock()
			stopped := s.stopped
			s.mu.Unlock()
			if stopped {
				return nil
			}
			return err
		}
		s.wg.Add(1)
		s.pool.Spawn(func() {
			defer s.wg.Done()
			s.handleConn(conn)
		})
	}
}

// Addr returns the bound address, or nil before Serve.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Stop closes the listener and waits for in-flight connections to drain.
func (s *Server) Stop() error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return nil
	}
	s.stopped = true
	ln := s.listener
	s.mu.Unlock()

	var err error
	if ln != nil {
		err = ln.Close()
	}
	s.wg.Wait()
	return err
}

func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()
	remote := conn.RemoteAddr().String()
	reader := bufio.NewReader(conn)

	for {
		var req Request
		if err := readMessage(reader, &req); err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
				s.log.WithError(err).WithField("remote", remote).Warn("read failed")
			}
			return
		}
		resp := s.dispatch(req)
		if err := writeMessage(conn, resp); err != nil {
			s.log.WithError(err).WithField("remote", remote).Warn("write failed")
			return
		}
	}
}

func (s *Server) dispatch(req Request) Response {
	switch req.Op {
	case OpGet:
		value, err := s.engine.Get(req.Key)
		if errors.Is(err, ErrKeyNotFound) {
			return Response{Status: StatusNotFound}
		}
		if err != nil {
			return Response{Status: StatusError, Error: err.Error()}
		}
		return Response{Status: StatusOK, Value: value}
	case OpSet:
		if err := s.engine.Set(req.Key, req.Value); err != nil {
			return Response{Status: StatusError, Error: err.Error()}
		}
		return Response{Status: StatusOK}
	case OpRemove:
		err := s.engine.Remove(req.Key)
		if errors.Is(err, ErrKeyNotFound) {
			return Response{Status: StatusNotFound}
		}
		if err != nil {
			return Response{Status: StatusError, Error: err.Error()}
		}
		return Response{Status: StatusOK}
	default:
		return Response{Status: StatusError, Error: "unknown operation"}
	}
}
