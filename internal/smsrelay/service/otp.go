package service

import "regexp"

// otpPatterns is checked in order; the first match wins. The cascade goes
// from an explicit code/otp/pin label down to bare digit runs, so a labeled
// code beats an incidental number elsewhere in the message. This is a
// heuristic, not a contract with any SMS source format.
var otpPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(?:code|otp|pin)\b\D{0,12}?(\d[\d-]{2,8}\d)`),
	regexp.MustCompile(`\b(\d{3}-\d{3})\b`),
	regexp.MustCompile(`\b(\d{6,8})\b`),
	regexp.MustCompile(`\b(\d{4,5})\b`),
}

// ExtractOTP extracts a best-effort one-time code from an SMS body. The
// second return value is false when no pattern matched.
func ExtractOTP(message string) (string, bool) {
	for _, pattern := range otpPatterns {
		if m := pattern.FindStringSubmatch(message); m != nil {
			return m[1], true
		}
	}
	return "", false
}
