package translator

import (
	"github.com/anicoll/nspanel-gateway/internal/pkg/config"
	"github.com/anicoll/nspanel-gateway/internal/pkg/model"
)

const entityTextColor = "17299"

// cardFrames renders a generic card from the first two configured entities.
func (t *Translator) cardFrames(device config.Device, card model.Card) []string {
	cfg, _ := device.Card(card.String())
	update := []string{"entityUpd", cfg.Title, "1|1", cfg.Data}
	for i := 0; i < 2; i++ {
		update = append(update, t.entityFields(cfg, i)...)
	}
	return []string{
		join("pageType", card.String()),
		join(update...),
	}
}

func (t *Translator) entityFields(card config.Card, index int) []string {
	if index >= len(card.Entities) {
		return []string{"text", "", "", entityTextColor, ""}
	}
	e := card.Entities[index]
	icon := ""
	if e.Icon != "" {
		icon = t.icons.Glyph(e.Icon)
	}
	return []string{"text", e.Entity, icon, entityTextColor, e.Name}
}
