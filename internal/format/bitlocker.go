package format

import (
	"strconv"
	"strings"
)

// Status is a label with a badge tone (success, danger, warning, muted).
type Status struct {
	Label string
	Tone  string
}

// BitLockerStatus maps a reported protection status to a badge. Agents send
// either "On"/"Off" or the WMI code 1/0; anything else is unknown.
func BitLockerStatus(raw string) Status {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "on", "1", "true", "protected":
		return Status{Label: "Protected", Tone: "success"}
	case "off", "0", "false", "unprotected":
		return Status{Label: "Unprotected", Tone: "danger"}
	}
	return Status{Label: "Unknown", Tone: "muted"}
}

// EncryptionProgress returns the percentage to show while a volume is still
// encrypting, or "" once it is complete.
func EncryptionProgress(pct float64) string {
	if pct >= 100 || pct < 0 {
		return ""
	}
	return Percent(pct)
}

// Percent renders 0-100 with at most one decimal.
func Percent(pct float64) string {
	s := strings.TrimSuffix(strconv.FormatFloat(pct, 'f', 1, 64), ".0")
	return s + "%"
}
