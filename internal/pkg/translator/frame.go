package translator

import "github.com/anicoll/nspanel-gateway/internal/pkg/model"

// Frame is one wire message tagged with the card it belongs to.
type Frame struct {
	Card model.Card
	Text string
}

// Filter returns the text of the frames tagged with the current card, in order.
func Filter(frames []Frame, current model.Card) []string {
	out := make([]string, 0, len(frames))
	for _, f := range frames {
		if f.Card == current && f.Text != "" {
			out = append(out, f.Text)
		}
	}
	return out
}
