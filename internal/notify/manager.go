package notify

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/stellarlinkco/truthwatch/internal/config"
)

// Manager fans one alert out to every enabled channel.
type Manager struct {
	channels []Channel
}

func NewManager(cfg config.ChannelsConfig) (*Manager, error) {
	m := &Manager{}

	if cfg.Ntfy.Enabled {
		ch, err := NewNtfyChannel(cfg.Ntfy)
		if err != nil {
			return nil, fmt.Errorf("init ntfy channel: %w", err)
		}
		m.channels = append(m.channels, ch)
	}

	if cfg.Telegram.Enabled {
		ch, err := NewTelegramChannel(cfg.Telegram)
		if err != nil {
			return nil, fmt.Errorf("init telegram channel: %w", err)
		}
		m.channels = append(m.channels, ch)
	}

	return m, nil
}

// NewManagerWithChannels builds a manager over preconstructed channels
// (for testing).
func NewManagerWithChannels(channels ...Channel) *Manager {
	return &Manager{channels: channels}
}

func (m *Manager) EnabledChannels() []string {
	names := make([]string, 0, len(m.channels))
	for _, ch := range m.channels {
		names = append(names, ch.Name())
	}
	return names
}

// Notify delivers the alert to each channel in turn. A failing channel is
// logged and does not stop delivery to the others; the returned error joins
// all failures.
func (m *Manager) Notify(ctx context.Context, alert Alert) error {
	var errs []error
	for _, ch := range m.channels {
		if err := ch.Send(ctx, alert); err != nil {
			log.Printf("[notify] send via %s failed: %v", ch.Name(), err)
			errs = append(errs, fmt.Errorf("%s: %w", ch.Name(), err))
			continue
		}
		log.Printf("[notify] alert sent via %s", ch.Name())
	}
	return errors.Join(errs...)
}
