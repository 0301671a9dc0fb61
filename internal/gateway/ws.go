package gateway

import (
	"context"
	"errors"
	"net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/flemzord/careerai/pkg/message"
)

// handleWebSocket serves GET /ws/chat. Each text frame from the client is
// a message.ChatRequest; the server answers with delta frames followed by
// one done or error frame. The connection stays open for further turns.
func (g *Gateway) handleWebSocket() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: g.config.AllowedOrigins,
		})
		if err != nil {
			g.logger.Warn("websocket accept failed", "error", err)
			return
		}
		defer c.CloseNow()
		c.SetReadLimit(int64(g.config.MaxBodyBytes))

		ctx := r.Context()
		for {
			var req message.ChatRequest
			if err := wsjson.Read(ctx, c, &req); err != nil {
				if s := websocket.CloseStatus(err); s != websocket.StatusNormalClosure && s != websocket.StatusGoingAway &&
					!errors.Is(err, context.Canceled) {
					g.logger.Debug("websocket read ended", "error", err)
				}
				return
			}

			if err := g.streamTurn(ctx, c, req); err != nil {
				g.logger.Debug("websocket write failed", "error", err)
				return
			}
		}
	}
}

// streamTurn runs one turn over c. The returned error is a write failure;
// turn failures are reported to the client as an error frame.
func (g *Gateway) streamTurn(ctx context.Context, c *websocket.Conn, req message.ChatRequest) error {
	var (
		writeErr error
		err      error
	)
	if req.StudentID, err = scopeStudent(ctx, req.StudentID); err != nil {
		return wsjson.Write(ctx, c, message.StreamFrame{Type: message.FrameError, Error: "forbidden"})
	}
	reply, err := g.chat.Stream(ctx, req, func(f message.StreamFrame) error {
		writeErr = wsjson.Write(ctx, c, f)
		return writeErr
	})
	if writeErr != nil {
		return writeErr
	}
	if err != nil {
		code, msg := statusFor(err)
		if code >= http.StatusInternalServerError {
			g.logger.Error("streamed turn failed", "error", err)
		}
		return wsjson.Write(ctx, c, message.StreamFrame{Type: message.FrameError, Error: msg})
	}
	return wsjson.Write(ctx, c, message.StreamFrame{Type: message.FrameDone, Reply: &reply})
}
