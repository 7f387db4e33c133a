package ipc

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"time"
)

// ErrNotRunning means nothing is listening on the socket.
var ErrNotRunning = errors.New("tuck is not running")

// Send validates line, delivers it to the server at socketPath and returns
// the reply text.
func Send(socketPath, line string) (string, error) {
	req, err := ParseRequest(line)
	if err != nil {
		return "", err
	}

	conn, err := net.DialTimeout("unix", socketPath, time.Second)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNotRunning, err)
	}
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(replyTimeout + 2*time.Second))

	if _, err := fmt.Fprintf(conn, "%s\n", req); err != nil {
		return "", fmt.Errorf("failed to send message: %w", err)
	}

	reply, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil {
		// quit may tear the process down before the reply is flushed.
		if errors.Is(err, io.EOF) && req.Name == CmdQuit {
			return "stopping", nil
		}
		if reply == "" {
			return "", fmt.Errorf("failed to read reply: %w", err)
		}
	}
	reply = strings.TrimSpace(reply)

	switch {
	case strings.HasPrefix(reply, "ok: "):
		return strings.TrimPrefix(reply, "ok: "), nil
	case strings.HasPrefix(reply, "error: "):
		return "", errors.New(strings.TrimPrefix(reply, "error: "))
	default:
		return reply, nil
	}
}
