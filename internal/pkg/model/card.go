package model

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownCard = errors.New("unknown card")

// Card identifies a screen on the panel.
type Card string

func (c Card) String() string {
	return string(c)
}

const (
	CardScreensaver Card = "screensaver"
	CardQR          Card = "cardQR"
	CardAlarm       Card = "cardAlarm"
	CardThermo      Card = "cardThermo"
	CardHome        Card = "cardHome"
)

var Cards = []Card{
	CardScreensaver,
	CardQR,
	CardAlarm,
	CardThermo,
	CardHome,
}

// ParseCard maps a card name to a Card ignoring case.
func ParseCard(s string) (Card, error) {
	for _, c := range Cards {
		if strings.EqualFold(c.String(), s) {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCard, s)
}
