package apiclient

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/marcus/studysync/internal/models"
)

// SyncHandler receives stream events in arrival order. Returning an error
// stops the stream.
type SyncHandler func(models.SyncEvent) error

// StreamSync starts a sync and feeds each server-sent event to fn until a
// complete or error event arrives. A stream that ends without one returns
// ErrStreamClosed. The stream is cancelled only through ctx.
func (c *Client) StreamSync(ctx context.Context, aiEnabled bool, fn SyncHandler) error {
	path := "/api/sync?ai_enabled=" + strconv.FormatBool(aiEnabled)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")

	stream := c.Stream
	if stream == nil {
		stream = http.DefaultClient
	}
	resp, err := stream.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return decode(resp.StatusCode, body, nil)
	}

	c.Logger.Debug().Bool("ai_enabled", aiEnabled).Msg("sync stream opened")
	return readEvents(resp.Body, fn)
}

// readEvents parses "data: {json}" frames separated by blank lines.
func readEvents(r io.Reader, fn SyncHandler) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var data bytes.Buffer
	flush := func() (bool, error) {
		if data.Len() == 0 {
			return false, nil
		}
		var ev models.SyncEvent
		err := json.Unmarshal(data.Bytes(), &ev)
		data.Reset()
		if err != nil {
			return false, fmt.Errorf("decode sync event: %w", err)
		}
		ev.Normalize()
		if err := fn(ev); err != nil {
			return false, err
		}
		return ev.Terminal(), nil
	}

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			done, err := flush()
			if err != nil || done {
				return err
			}
			continue
		}
		if line[0] == ':' {
			continue
		}
		if v, ok := bytes.CutPrefix(line, []byte("data:")); ok {
			if data.Len() > 0 {
				data.WriteByte('\n')
			}
			data.Write(bytes.TrimPrefix(v, []byte(" ")))
		}
	}
	if err := scanner.Err(); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("read sync stream: %w", err)
	}
	done, err := flush()
	if err != nil {
		return err
	}
	if !done {
		return ErrStreamClosed
	}
	return nil
}
