package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/oxwatch/balwatch/internal/core/domain"
	"github.com/oxwatch/balwatch/internal/infra/storage"
)

const telegramAPIBase = "https://api.telegram.org"

// TelegramSink delivers events to every registered chat through the Bot
// API sendMessage call.
type TelegramSink struct {
	token      string
	baseURL    string
	httpClient *http.Client
	recipients storage.RecipientRepository
	formatter  Formatter
	log        *slog.Logger
}

type TelegramOptions struct {
	// BaseURL overrides the Bot API host. Tests point it at a local server.
	BaseURL         string
	ShowFullAddress bool
	Timeout         time.Duration
}

func NewTelegramSink(token string, recipients storage.RecipientRepository, opts TelegramOptions) *TelegramSink {
	base := opts.BaseURL
	if base == "" {
		base = telegramAPIBase
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &TelegramSink{
		token:      token,
		baseURL:    base,
		httpClient: &http.Client{Timeout: timeout},
		recipients: recipients,
		formatter:  Formatter{ShowFullAddress: opts.ShowFullAddress},
		log:        slog.Default(),
	}
}

// Emit formats the event and sends it to every registered chat. A send
// failure to one chat is logged and does not stop delivery to the rest.
func (s *TelegramSink) Emit(ctx context.Context, event domain.Event) error {
	text := s.formatter.Format(event)
	if text == "" {
		return nil
	}

	// Pick up chats registered since the last send.
	if err := s.recipients.Reload(); err != nil {
		s.log.Warn("failed to reload telegram recipients", "error", err)
	}

	recipients := s.recipients.List()
	if len(recipients) == 0 {
		s.log.Debug("no telegram recipients registered, dropping message")
		return nil
	}

	for _, r := range recipients {
		if err := s.sendMessage(ctx, r.ChatID, text); err != nil {
			s.log.Warn("failed to send telegram message",
				"chat_id", r.ChatID, "username", r.Username, "error", err)
		}
	}
	return nil
}

func (s *TelegramSink) Close() error { return nil }

type sendMessageRequest struct {
	ChatID    int64  `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

type sendMessageResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

func (s *TelegramSink) sendMessage(ctx context.Context, chatID int64, text string) error {
	body, err := json.Marshal(sendMessageRequest{
		ChatID:    chatID,
		Text:      text,
		ParseMode: "HTML",
	})
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", s.baseURL, s.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return err
	}

	var api sendMessageResponse
	if err := json.Unmarshal(raw, &api); err != nil {
		return fmt.Errorf("telegram: unexpected response (status %d)", resp.StatusCode)
	}
	if !api.OK {
		return fmt.Errorf("telegram: %s (status %d)", api.Description, resp.StatusCode)
	}
	return nil
}
