package translator

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/anicoll/nspanel-gateway/internal/pkg/model"
)

var (
	errEntityMissing     = errors.New("entity not in event")
	errEntityUnavailable = errors.New("entity unavailable")
)

type restoredMarker struct {
	Restored bool `json:"restored"`
}

// entityState finds entityID in ev and decodes it. The flat shape is detected by probing the
// raw payload for `<entity>":{"s`, anything else is treated as a nested "+" diff.
func entityState(raw []byte, ev *model.EntityEvent, entityID string) (model.EntityState, error) {
	v, ok := ev.Entity(entityID)
	if !ok {
		return model.EntityState{}, errEntityMissing
	}

	es := model.EntityState{}
	if bytes.Contains(raw, []byte(entityID+`":{"s`)) {
		if err := json.Unmarshal(v, &es); err != nil {
			return model.EntityState{}, fmt.Errorf("decoding %s: %w", entityID, err)
		}
	} else {
		diff := model.EntityDiff{}
		if err := json.Unmarshal(v, &diff); err != nil {
			return model.EntityState{}, fmt.Errorf("decoding %s: %w", entityID, err)
		}
		if diff.Add == nil {
			return model.EntityState{}, fmt.Errorf("decoding %s: no changes", entityID)
		}
		es = *diff.Add
	}

	if es.State != nil && *es.State == "unavailable" {
		return model.EntityState{}, errEntityUnavailable
	}
	if len(es.Attributes) > 0 {
		marker := restoredMarker{}
		if err := json.Unmarshal(es.Attributes, &marker); err == nil && marker.Restored {
			return model.EntityState{}, errEntityUnavailable
		}
	}
	return es, nil
}
