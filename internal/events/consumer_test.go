package events

import (
	"context"
	"errors"
	"testing"

	"github.com/groupmail/groupmail-services/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestDispatch(t *testing.T) {
	logger := zerolog.Nop()
	payload := []byte(`{"name":"hikers","code":"trail","email":"a@example.com"}`)

	tests := []struct {
		name    string
		payload []byte
		retry   bool
		err     error
		ack     bool
		handled bool
	}{
		{"processed", payload, false, nil, true, true},
		{"rejected", payload, false, errors.New("code invalid"), true, true},
		{"retryable", payload, true, errors.New("list server down"), false, true},
		{"malformed", []byte(`{"name":`), false, nil, true, false},
		{"incomplete", []byte(`{"name":"hikers"}`), false, nil, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got *models.JoinRequest
			handle := func(ctx context.Context, req models.JoinRequest) (bool, error) {
				got = &req
				return tt.retry, tt.err
			}

			assert.Equal(t, tt.ack, dispatch(context.Background(), tt.payload, handle, &logger))
			if tt.handled {
				if assert.NotNil(t, got) {
					assert.Equal(t, "trail", got.Code)
				}
			} else {
				assert.Nil(t, got)
			}
		})
	}
}
