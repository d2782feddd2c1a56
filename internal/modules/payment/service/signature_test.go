package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVerifySignature(t *testing.T) {
	body := []byte(`{"provider_ref":"pi_1","status":"succeeded"}`)
	sig := Sign("topsecret", body)

	assert.True(t, VerifySignature("topsecret", body, sig))
	assert.True(t, VerifySignature("topsecret", body, "sha256="+sig))
	assert.False(t, VerifySignature("other", body, sig))
	assert.False(t, VerifySignature("topsecret", []byte(`{}`), sig))
	assert.False(t, VerifySignature("topsecret", body, "not-hex"))
	assert.False(t, VerifySignature("", body, Sign("", body)))
	assert.False(t, VerifySignature("topsecret", body, ""))
}
