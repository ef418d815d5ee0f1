package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/MKhiriev/go-money-keeper/internal/service"
	"github.com/MKhiriev/go-money-keeper/models"
)

func TestSubscriptionWebhook(t *testing.T) {
	const payload = `{"event_id":"evt_1","user_id":2,"status":"active"}`

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{name: "accepted", wantStatus: http.StatusOK},
		{name: "bad signature", err: service.ErrInvalidSignature, wantStatus: http.StatusUnauthorized, wantCode: "INVALID_SIGNATURE"},
		{name: "unknown user", err: service.ErrInvalidDataProvided, wantStatus: http.StatusBadRequest, wantCode: "INVALID_REQUEST"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, m := newMockedHandler(t)
			m.subscriptions.EXPECT().HandleEvent(gomock.Any(), []byte(payload), "deadbeef").Return(tt.err)

			req := httptest.NewRequest(http.MethodPost, "/webhooks/subscription", strings.NewReader(payload))
			req.Header.Set(webhookSignatureHeader, "deadbeef")

			rec := serve(h, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, decodeBody[models.ErrorResponse](t, rec).Code)
			}
		})
	}
}
