package model

// Page is the current card of a panel together with the one rendered before it.
type Page struct {
	Current  Card `json:"current"`
	Previous Card `json:"previous"`
}

func DefaultPage() Page {
	return Page{
		Current:  CardScreensaver,
		Previous: CardScreensaver,
	}
}

// Advance returns the page after rendering target.
func (p Page) Advance(target Card) Page {
	return Page{
		Current:  target,
		Previous: p.Current,
	}
}
