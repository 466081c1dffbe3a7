package entity

import (
	"crypto/sha256"
	"encoding/hex"
)

// SmsMessage is a single record returned by the SMS viewing API.
type SmsMessage struct {
	Dt      string `json:"dt"`
	Num     string `json:"num"`
	Cli     string `json:"cli"`
	Message string `json:"message"`
}

// DedupKey returns a stable content hash over (dt, num, message). Identical
// triples always produce the same key.
func (m SmsMessage) DedupKey() string {
	h := sha256.New()
	h.Write([]byte(m.Dt))
	h.Write([]byte("|"))
	h.Write([]byte(m.Num))
	h.Write([]byte("|"))
	h.Write([]byte(m.Message))
	return hex.EncodeToString(h.Sum(nil))
}
