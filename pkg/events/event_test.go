package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelopeRoundTrip(t *testing.T) {
	e := NewEvent("EXCHANGE_COMPLETED", map[string]interface{}{"session_id": "s-1"})

	raw, err := Marshal(e)
	require.NoError(t, err)

	decoded, err := Unmarshal(raw, "")
	require.NoError(t, err)
	assert.Equal(t, "EXCHANGE_COMPLETED", decoded.EventType())
	assert.Equal(t, "s-1", decoded.Payload()["session_id"])
	assert.WithinDuration(t, e.Timestamp(), decoded.Timestamp(), time.Millisecond)
}

func TestUnmarshalBarePayloadUsesFallbackType(t *testing.T) {
	decoded, err := Unmarshal([]byte(`{"user_id":"u-1","plan":"mini"}`), "QUOTA_PROVISIONED")
	require.NoError(t, err)

	assert.Equal(t, "QUOTA_PROVISIONED", decoded.Type)
	assert.Equal(t, "mini", decoded.Data["plan"])
	assert.False(t, decoded.OccurredAt.IsZero())
}

func TestUnmarshalRejectsUntypedEvent(t *testing.T) {
	_, err := Unmarshal([]byte(`{"user_id":"u-1"}`), "")
	assert.Error(t, err)

	_, err = Unmarshal([]byte(`not json`), "X")
	assert.Error(t, err)
}
