package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseUplink(t *testing.T) {
	tests := map[string]struct {
		payload string
		want    UIEvent
		wantErr error
	}{
		"startup": {
			payload: `{"CustomRecv":"event,startup,54,eu"}`,
			want:    UIEvent{Kind: UIEventStartup},
		},
		"sleep reached": {
			payload: `{"CustomRecv":"event,sleepReached,cardQR"}`,
			want:    UIEvent{Kind: UIEventSleepReached},
		},
		"exit screensaver": {
			payload: `{"CustomRecv":"event,buttonPress2,screensaver,bExit,1"}`,
			want:    UIEvent{Kind: UIEventExitScreensaver},
		},
		"next": {
			payload: `{"CustomRecv":"event,buttonPress2,cardQR,bNext"}`,
			want:    UIEvent{Kind: UIEventNext, Card: "cardQR"},
		},
		"prev": {
			payload: `{"CustomRecv":"event,buttonPress2,cardThermo,bPrev"}`,
			want:    UIEvent{Kind: UIEventPrev, Card: "cardThermo"},
		},
		"unknown button": {
			payload: `{"CustomRecv":"event,buttonPress2,cardQR,OnOff,1"}`,
			wantErr: ErrUnrecognizedEvent,
		},
		"missing field": {
			payload: `{"StatusSNS":{"Time":"2024-01-01T00:00:00"}}`,
			wantErr: ErrUnrecognizedEvent,
		},
		"not json": {
			payload: `event,startup,`,
			wantErr: ErrMalformedPayload,
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, err := ParseUplink([]byte(tt.payload))
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
