package dto

import "golang-futures-bot/internal/entity"

// SmsAPIRequest is the payload sent to the SMS viewing API.
type SmsAPIRequest struct {
	Token   string `json:"token"`
	Records int    `json:"records"`
}

// SmsAPIResponse is the payload returned by the SMS viewing API.
type SmsAPIResponse struct {
	Status string              `json:"status"`
	Data   []entity.SmsMessage `json:"data"`
}

// RelayStatus is the read-only status snapshot exposed over HTTP.
type RelayStatus struct {
	Connected     bool   `json:"connected"`
	Initialized   bool   `json:"initialized"`
	SeenCount     int    `json:"seen_count"`
	Destinations  int    `json:"destinations"`
	LastCycleTime string `json:"last_cycle_time,omitempty"`
}
