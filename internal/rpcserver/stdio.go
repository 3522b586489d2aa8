package rpcserver

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/davebream/widgetmcp/internal/logging"
	"github.com/davebream/widgetmcp/internal/protocol"
)

// maxLineSize bounds a single newline-delimited message.
const maxLineSize = 10 * 1024 * 1024

// lineWriter serializes newline-terminated writes.
type lineWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (lw *lineWriter) WriteJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	lw.mu.Lock()
	defer lw.mu.Unlock()
	_, err = lw.w.Write(append(data, '\n'))
	return err
}

// ServeStdio answers newline-delimited JSON-RPC requests read from r on w until
// r is exhausted or ctx is cancelled. Notifications get no reply.
func ServeStdio(ctx context.Context, d *Dispatcher, r io.Reader, w io.Writer, logger *slog.Logger) error {
	if logger == nil {
		logger = logging.Nop()
	}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), maxLineSize)
	out := &lineWriter{w: w}
	var seq protocol.Counter

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil
		}
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		n := seq.Next()

		resp := handleLine(ctx, d, line, logger.With("seq", n))
		if resp == nil {
			continue
		}
		if err := out.WriteJSON(resp); err != nil {
			return fmt.Errorf("write response: %w", err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read stdin: %w", err)
	}
	return nil
}

func handleLine(ctx context.Context, d *Dispatcher, line []byte, log *slog.Logger) *protocol.Response {
	req, err := protocol.ParseRequest(line)
	if err != nil {
		log.Error("request failed", "error", err.Error())
		return protocol.NewErrorResponse(nil, protocol.InternalError(err))
	}
	if req.IsNotification() {
		log.Debug("notification", "rpc_method", req.Method)
		return nil
	}
	resp, err := d.Handle(ctx, req.Method, req.Params, req.ID)
	if err != nil {
		log.Error("request failed", "rpc_method", req.Method, "error", err.Error())
		return protocol.NewErrorResponse(req.ID, protocol.InternalError(err))
	}
	return resp
}
