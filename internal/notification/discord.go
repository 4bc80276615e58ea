package notification

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

type DiscordMessage struct {
	Embeds []DiscordEmbed `json:"embeds"`
}

type DiscordEmbed struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Color       int    `json:"color"`
}

const (
	colorRed    = 16711680
	colorYellow = 16776960
	colorGreen  = 65280
)

// Notifier posts run outcomes to Discord webhooks. A channel with an empty URL is
// skipped, so a zero Notifier never sends anything.
type Notifier struct {
	SuccessURL string
	WarningURL string
	ErrorURL   string
	Client     *http.Client
}

func NewNotifier(successURL, warningURL, errorURL string) *Notifier {
	return &Notifier{
		SuccessURL: successURL,
		WarningURL: warningURL,
		ErrorURL:   errorURL,
		Client:     &http.Client{Timeout: 10 * time.Second},
	}
}

func (n *Notifier) SendError(errorMessage string) error {
	return n.send(n.errorURL(), DiscordEmbed{
		Title:       "🚨 Error Notification",
		Description: fmt.Sprintf("Pantanal burn analysis failed.\n\nAn error occurred: %s", errorMessage),
		Color:       colorRed,
	})
}

func (n *Notifier) SendWarning(warningMessage string) error {
	return n.send(n.warningURL(), DiscordEmbed{
		Title:       "⚠️ Warning Notification",
		Description: warningMessage,
		Color:       colorYellow,
	})
}

func (n *Notifier) SendSuccess(successMessage string) error {
	return n.send(n.successURL(), DiscordEmbed{
		Title:       "✅ Success Notification",
		Description: fmt.Sprintf("Pantanal burn analysis finished.\n\n%s", successMessage),
		Color:       colorGreen,
	})
}

func (n *Notifier) errorURL() string {
	if n == nil {
		return ""
	}
	return n.ErrorURL
}

func (n *Notifier) warningURL() string {
	if n == nil {
		return ""
	}
	return n.WarningURL
}

func (n *Notifier) successURL() string {
	if n == nil {
		return ""
	}
	return n.SuccessURL
}

func (n *Notifier) send(url string, embed DiscordEmbed) error {
	if url == "" {
		return nil
	}

	payload, err := json.Marshal(DiscordMessage{Embeds: []DiscordEmbed{embed}})
	if err != nil {
		return err
	}

	client := n.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Post(url, "application/json", bytes.NewBuffer(payload))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to send Discord notification, status code: %d", resp.StatusCode)
	}

	return nil
}
