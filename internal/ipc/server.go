package ipc

import (
	"bufio"
	"errors"
	"fmt"
	"log"
	"net"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/chess10kp/tuck/internal/mainloop"
)

// Handler executes a request on the main loop and returns the reply text.
type Handler interface {
	Handle(req Request) (string, error)
}

type HandlerFunc func(req Request) (string, error)

func (f HandlerFunc) Handle(req Request) (string, error) { return f(req) }

// replyTimeout bounds how long a connection waits for the main loop.
const replyTimeout = 5 * time.Second

type Server struct {
	socketPath string
	dispatcher mainloop.Dispatcher
	handler    Handler

	mu       sync.Mutex
	listener net.Listener
	running  bool
	// wg tracks the accept loop only. Connections waiting on the main loop
	// must not hold up a Stop that runs there.
	wg sync.WaitGroup
}

func NewServer(socketPath string, d mainloop.Dispatcher, h Handler) *Server {
	return &Server{
		socketPath: socketPath,
		dispatcher: d,
		handler:    h,
	}
}

func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("IPC server already running")
	}

	// A stale socket from a crashed run would make Listen fail. The pid lock
	// guarantees no live instance owns it.
	if _, err := os.Stat(s.socketPath); err == nil {
		os.Remove(s.socketPath)
	}

	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("failed to create socket listener: %w", err)
	}

	s.listener = listener
	s.running = true

	log.Printf("[IPC] Listening on %s", s.socketPath)

	s.wg.Add(1)
	go s.acceptConnections(listener)

	return nil
}

func (s *Server) acceptConnections(listener net.Listener) {
	defer s.wg.Done()
	for {
		conn, err := listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			log.Printf("[IPC] Error accepting connection: %v", err)
			continue
		}

		go s.handleConnection(conn)
	}
}

func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(replyTimeout + time.Second))

	line, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil && line == "" {
		log.Printf("[IPC] Error reading from connection: %v", err)
		return
	}

	message := strings.TrimSpace(line)
	log.Printf("[IPC] Received: %s", message)

	reply, err := s.handleMessage(message)
	if err != nil {
		fmt.Fprintf(conn, "error: %v\n", err)
		return
	}
	fmt.Fprintf(conn, "ok: %s\n", reply)
}

func (s *Server) handleMessage(message string) (string, error) {
	req, err := ParseRequest(message)
	if err != nil {
		return "", err
	}

	type result struct {
		reply string
		err   error
	}
	done := make(chan result, 1)

	s.dispatcher.Post(func() {
		reply, err := s.handler.Handle(req)
		done <- result{reply, err}
	})

	select {
	case r := <-done:
		return r.reply, r.err
	case <-time.After(replyTimeout):
		return "", fmt.Errorf("timed out waiting for %s", req.Name)
	}
}

func (s *Server) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	listener := s.listener
	s.mu.Unlock()

	err := listener.Close()
	s.wg.Wait()

	if _, statErr := os.Stat(s.socketPath); statErr == nil {
		os.Remove(s.socketPath)
	}

	log.Printf("[IPC] Server stopped")
	return err
}
