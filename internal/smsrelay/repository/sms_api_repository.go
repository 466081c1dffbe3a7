package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"golang-futures-bot/internal/entity"
	"golang-futures-bot/internal/smsrelay/config"
	"golang-futures-bot/internal/smsrelay/dto"
)

// SmsAPIRepository fetches recent messages from the SMS viewing API.
type SmsAPIRepository interface {
	GetRecentMessages(ctx context.Context, records int) ([]entity.SmsMessage, error)
}

type smsAPIRepository struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewSmsAPIRepository creates the SMS API client.
func NewSmsAPIRepository(cfg config.SmsAPI) (SmsAPIRepository, error) {
	timeout := 10 * time.Second
	if cfg.Timeout != "" {
		d, err := time.ParseDuration(cfg.Timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid sms api timeout: %w", err)
		}
		timeout = d
	}

	return &smsAPIRepository{
		baseURL:    cfg.BaseURL,
		token:      cfg.Token,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

func (r *smsAPIRepository) GetRecentMessages(ctx context.Context, records int) ([]entity.SmsMessage, error) {
	payload, err := json.Marshal(dto.SmsAPIRequest{Token: r.token, Records: records})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.baseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sms api request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("sms api returned status %d", resp.StatusCode)
	}

	var apiResp dto.SmsAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("failed to decode sms api response: %w", err)
	}
	if apiResp.Status != "success" {
		return nil, fmt.Errorf("sms api returned status %q", apiResp.Status)
	}

	return apiResp.Data, nil
}
