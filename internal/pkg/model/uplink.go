package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	ErrUnrecognizedEvent = errors.New("unrecognized panel event")
	ErrMalformedPayload  = errors.New("malformed panel payload")
)

// UIEventKind is the navigation relevant part of a panel event.
type UIEventKind string

func (k UIEventKind) String() string {
	return string(k)
}

const (
	UIEventStartup         UIEventKind = "startup"
	UIEventSleepReached    UIEventKind = "sleepReached"
	UIEventExitScreensaver UIEventKind = "exitScreensaver"
	UIEventNext            UIEventKind = "bNext"
	UIEventPrev            UIEventKind = "bPrev"
)

// UIEvent is a parsed panel event. Card is only set for next and prev.
type UIEvent struct {
	Kind UIEventKind
	Card string
}

// Uplink is the envelope the panel firmware publishes on its command topic.
type Uplink struct {
	CustomRecv *string `json:"CustomRecv"`
}

const (
	startupPrefix         = "event,startup,"
	sleepReachedPrefix    = "event,sleepReached,"
	exitScreensaverPrefix = "event,buttonPress2,screensaver,bExit,"
)

var navigateRegex = regexp.MustCompile(`^event,buttonPress2,([^,]*),(bNext|bPrev)`)

// ParseUplink extracts the UI event from a raw uplink payload.
func ParseUplink(payload []byte) (UIEvent, error) {
	up := Uplink{}
	if err := json.Unmarshal(payload, &up); err != nil {
		return UIEvent{}, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
	}
	if up.CustomRecv == nil {
		return UIEvent{}, fmt.Errorf("%w: no CustomRecv field", ErrUnrecognizedEvent)
	}
	return ParseTokens(*up.CustomRecv)
}

// ParseTokens classifies the comma separated token string of a panel event.
func ParseTokens(tokens string) (UIEvent, error) {
	switch {
	case strings.HasPrefix(tokens, startupPrefix):
		return UIEvent{Kind: UIEventStartup}, nil
	case strings.HasPrefix(tokens, sleepReachedPrefix):
		return UIEvent{Kind: UIEventSleepReached}, nil
	case strings.HasPrefix(tokens, exitScreensaverPrefix):
		return UIEvent{Kind: UIEventExitScreensaver}, nil
	}
	if m := navigateRegex.FindStringSubmatch(tokens); m != nil {
		return UIEvent{Kind: UIEventKind(m[2]), Card: m[1]}, nil
	}
	return UIEvent{}, fmt.Errorf("%w: %q", ErrUnrecognizedEvent, tokens)
}
