package webhook

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "guestgate/pkg/domainerrors"
)

const inboundText = `{
	"object": "whatsapp_business_account",
	"entry": [{
		"id": "1001",
		"changes": [{
			"field": "messages",
			"value": {
				"messaging_product": "whatsapp",
				"messages": [{
					"from": "5521911112222",
					"id": "wamid.abc",
					"type": "text",
					"text": {"body": "adiciona o +5521998765432 e o 21 91234-5678"}
				}]
			}
		}]
	}]
}`

const statusOnly = `{
	"object": "whatsapp_business_account",
	"entry": [{
		"changes": [{
			"field": "messages",
			"value": {"statuses": [{"id": "wamid.abc", "status": "delivered"}]}
		}]
	}]
}`

func TestParseTextMessage(t *testing.T) {
	msgs, err := Parse(strings.NewReader(inboundText))
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "5521911112222", msgs[0].From)
	assert.Contains(t, msgs[0].Body, "+5521998765432")
}

func TestParseStatusUpdateYieldsNothing(t *testing.T) {
	msgs, err := Parse(strings.NewReader(statusOnly))
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestParseSkipsNonTextMessages(t *testing.T) {
	body := `{"entry":[{"changes":[{"value":{"messages":[{"from":"5521911112222","type":"image"}]}}]}]}`
	msgs, err := Parse(strings.NewReader(body))
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestParseMalformedPayload(t *testing.T) {
	_, err := Parse(strings.NewReader("{not json"))
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}
