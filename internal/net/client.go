package net

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/gorilla/websocket"
)

// Replay connects to a remote pad at addr (host:port or a ws:// URL), sends
// every event in script and returns the server's replies, hello first.
func Replay(ctx context.Context, addr string, script Script) ([]Reply, error) {
	u, err := padURL(addr, script)
	if err != nil {
		return nil, err
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", u, err)
	}
	defer conn.Close()

	replies := make([]Reply, 0, len(script.Events)+1)
	var hello Reply
	if err := conn.ReadJSON(&hello); err != nil {
		return nil, fmt.Errorf("read hello: %w", err)
	}
	replies = append(replies, hello)

	for i, ev := range script.Events {
		if err := ctx.Err(); err != nil {
			return replies, err
		}
		if err := conn.WriteJSON(ev); err != nil {
			return replies, fmt.Errorf("send event %d: %w", i, err)
		}
		var r Reply
		if err := conn.ReadJSON(&r); err != nil {
			return replies, fmt.Errorf("read reply %d: %w", i, err)
		}
		replies = append(replies, r)
	}

	_ = conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	return replies, nil
}

func padURL(addr string, script Script) (string, error) {
	raw := addr
	if u, err := url.Parse(addr); err != nil || (u.Scheme != "ws" && u.Scheme != "wss") {
		raw = "ws://" + addr + PadPath
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("pad address %q: %w", addr, err)
	}
	if u.Path == "" {
		u.Path = PadPath
	}
	if script.Bounds.W > 0 && script.Bounds.H > 0 {
		q := u.Query()
		q.Set("w", strconv.FormatFloat(script.Bounds.W, 'f', -1, 64))
		q.Set("h", strconv.FormatFloat(script.Bounds.H, 'f', -1, 64))
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}
