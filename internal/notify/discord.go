package notify

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/flowtrack/flowtrack/internal/logging"
)

// DiscordNotifier posts session events to a Discord channel.
type DiscordNotifier struct {
	session   *discordgo.Session
	channelID string
}

// NewDiscordNotifier connects to Discord with the given bot token.
func NewDiscordNotifier(token, channelID string) (*DiscordNotifier, error) {
	if token == "" || channelID == "" {
		return nil, fmt.Errorf("discord token and channel ID are required")
	}
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	if err := session.Open(); err != nil {
		return nil, fmt.Errorf("failed to open discord session: %w", err)
	}
	logging.Info("discord-notify", "connected, posting to channel %s", channelID)
	return &DiscordNotifier{session: session, channelID: channelID}, nil
}

// Close closes the Discord connection.
func (d *DiscordNotifier) Close() error {
	return d.session.Close()
}

// Notify implements Notifier. Delivery failures are logged, never
// propagated; a flaky webhook must not stall sessionization.
func (d *DiscordNotifier) Notify(e Event) {
	if _, err := d.session.ChannelMessageSend(d.channelID, describe(e)); err != nil {
		logging.Warn("discord-notify", "failed to send event %s: %v", e.ID, err)
	}
}
