package transport

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelopeBody(t *testing.T) {
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(NewList([]string{"a", "b"}, 2).Body(), &decoded))

	assert.Equal(t, "success", decoded["status"])
	assert.Equal(t, []interface{}{"a", "b"}, decoded["data"])
	assert.Equal(t, map[string]interface{}{"count": float64(2)}, decoded["meta"])
	assert.NotContains(t, decoded, "code")
}

func TestErrorEnvelope(t *testing.T) {
	env := NewError("NOT_FOUND", "listing not found", nil)
	assert.False(t, env.OK())
	assert.JSONEq(t, `{"status":"error","code":"NOT_FOUND","error":"listing not found"}`, string(env.Body()))
}

func TestUnencodableEnvelope(t *testing.T) {
	env := NewSuccess(make(chan int), nil)
	assert.JSONEq(t, `{"status":"error","code":"INTERNAL"}`, string(env.Body()))
}
