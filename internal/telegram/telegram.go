package telegram

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"compscout/server/internal/models"
	"compscout/server/internal/valuation"
)

type Service struct {
	logger *logrus.Logger
	client *http.Client
	config *models.TelegramConfig
}

func NewService(logger *logrus.Logger) *Service {
	return &Service{
		logger: logger,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (s *Service) UpdateConfig(config *models.TelegramConfig) {
	s.config = config
}

// SendMessage sends a message to the configured Telegram chat
func (s *Service) SendMessage(message string) error {
	if s.config == nil || !s.config.IsEnabled {
		return nil
	}

	if s.config.BotToken == "" {
		return errors.New("Telegram bot token is not configured")
	}

	if s.config.ChatID == "" {
		return errors.New("Telegram chat ID is not configured")
	}

	url := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", s.config.BotToken)
	payload := map[string]interface{}{
		"chat_id":    s.config.ChatID,
		"text":       message,
		"parse_mode": "HTML",
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal message payload: %v", err)
	}

	resp, err := s.client.Post(url, "application/json", bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to send Telegram message: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("Telegram API returned status %d: %s", resp.StatusCode, string(body))
	}

	return nil
}

// NotifyEstimateChange sends a notification when a subject's ARV changes.
// Intended to be wired as a valuation.Controller subscriber.
func (s *Service) NotifyEstimateChange(subject *models.SubjectProperty, est valuation.Estimate) {
	if s.config == nil || !s.config.IsEnabled {
		return
	}

	var message string
	if !est.HasEstimate {
		message = fmt.Sprintf(
			"🏠 <b>%s</b>\n\nNo ARV estimate available: no comps on file.",
			subject.Address,
		)
	} else {
		method := "similarity-weighted average"
		if est.Method == valuation.MethodMedian {
			method = "median of comp sale prices"
		}
		message = fmt.Sprintf(
			"🏠 <b>%s</b>\n\nARV updated: <b>$%.0f</b>\nBased on %d comps (%s)",
			subject.Address, est.ARV, est.CompCount, method,
		)
	}

	if err := s.SendMessage(message); err != nil {
		s.logger.WithError(err).Error("Failed to send ARV change notification")
	}
}
