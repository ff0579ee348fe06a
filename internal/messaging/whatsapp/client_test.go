package whatsapp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"guestgate/internal/platform/config"
	dErrors "guestgate/pkg/domainerrors"
)

func testConfig() config.MessagingConfig {
	return config.MessagingConfig{Token: "secret-token", PhoneNumberID: "123456"}
}

func TestSendRequestShape(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := New(testConfig(), WithBaseURL(srv.URL))
	err := c.Send(context.Background(), "5521998765432", "see you at the door")
	require.NoError(t, err)

	assert.Equal(t, "/123456/messages", gotPath)
	assert.Equal(t, "Bearer secret-token", gotAuth)
	assert.Equal(t, "whatsapp", gotBody["messaging_product"])
	assert.Equal(t, "5521998765432", gotBody["to"])
	assert.Equal(t, "text", gotBody["type"])
	text, ok := gotBody["text"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "see you at the door", text["body"])
}

func TestSendProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"invalid token"}}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := New(testConfig(), WithBaseURL(srv.URL))
	err := c.Send(context.Background(), "5521998765432", "hello")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeDeliveryFailure))
}

func TestSendTransportError(t *testing.T) {
	c := New(testConfig(), WithBaseURL("http://127.0.0.1:1"))
	err := c.Send(context.Background(), "5521998765432", "hello")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeDeliveryFailure))
}
