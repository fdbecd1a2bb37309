package chat

import (
	"strconv"
	"strings"
	"time"
)

// MessageRef is the API's acknowledgment of a posted, scheduled or edited message.
type MessageRef struct {
	Channel   string `json:"channel"`
	TS        string `json:"ts,omitempty"`
	Text      string `json:"text,omitempty"`
	Scheduled bool   `json:"scheduled"`
	PostAt    int64  `json:"postAt,omitempty"`
}

// Message is one history entry, annotated with an ISO-8601 time.
type Message struct {
	TS       string `json:"ts"`
	Type     string `json:"type,omitempty"`
	User     string `json:"user,omitempty"`
	Text     string `json:"text"`
	ThreadTS string `json:"threadTs,omitempty"`
	ISOTime  string `json:"isoTime"`
}

// Ack confirms a deletion.
type Ack struct {
	Channel string `json:"channel"`
	TS      string `json:"ts"`
}

// Range bounds a history query; both ends are inclusive.
type Range struct {
	Oldest string
	Latest string
}

// ISOTimestamp converts a message ts ("1700000000.123456") to an RFC 3339
// UTC instant with millisecond precision. Unparseable input yields "".
func ISOTimestamp(ts string) string {
	secPart, fracPart, _ := strings.Cut(ts, ".")
	sec, err := strconv.ParseInt(secPart, 10, 64)
	if err != nil {
		return ""
	}
	var ms int64
	if fracPart != "" {
		frac := (fracPart + "000")[:3]
		ms, err = strconv.ParseInt(frac, 10, 64)
		if err != nil {
			return ""
		}
	}
	return time.UnixMilli(sec*1000 + ms).UTC().Format("2006-01-02T15:04:05.000Z")
}
