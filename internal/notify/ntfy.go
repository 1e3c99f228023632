package notify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/stellarlinkco/truthwatch/internal/config"
)

const ntfyChannelName = "ntfy"

const ntfySendTimeout = 10 * time.Second

// NtfyChannel posts the alert body to a ntfy topic; any device subscribed
// to the topic receives it as a push notification.
type NtfyChannel struct {
	server     string
	topic      string
	httpClient *http.Client
}

func NewNtfyChannel(cfg config.NtfyConfig) (*NtfyChannel, error) {
	if cfg.Topic == "" {
		return nil, fmt.Errorf("ntfy topic is required")
	}
	server := cfg.Server
	if server == "" {
		server = config.DefaultNtfyServer
	}
	return &NtfyChannel{
		server:     strings.TrimRight(server, "/"),
		topic:      cfg.Topic,
		httpClient: &http.Client{Timeout: ntfySendTimeout},
	}, nil
}

func (n *NtfyChannel) Name() string { return ntfyChannelName }

func (n *NtfyChannel) Send(ctx context.Context, alert Alert) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		n.server+"/"+n.topic, strings.NewReader(alert.Message()))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("Title", "Market alert")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("post to ntfy: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("ntfy status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}
