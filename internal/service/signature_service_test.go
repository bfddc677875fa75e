package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHMACSignatureService_SignAndVerify(t *testing.T) {
	svc := NewHMACSignatureService()
	payload := svc.BuildCanonicalString("post", "/api/v1/operator/deposits/1/status", 1735689600, "n-1", `{"status":"confirmed"}`)
	sig := svc.Sign("operator-secret", payload)

	assert.Len(t, sig, 64)
	assert.Equal(t, sig, svc.Sign("operator-secret", payload))
	assert.True(t, svc.Verify("operator-secret", payload, sig))
	assert.True(t, svc.Verify("operator-secret", payload, strings.ToUpper(sig)))

	assert.False(t, svc.Verify("other-secret", payload, sig))
	assert.False(t, svc.Verify("operator-secret", payload+"x", sig))
	assert.False(t, svc.Verify("operator-secret", payload, "deadbeef"))
}

func TestHMACSignatureService_BuildCanonicalString(t *testing.T) {
	svc := NewHMACSignatureService()

	got := svc.BuildCanonicalString("post", "/p", 42, "abc", "")
	// sha256 of the empty string
	assert.Equal(t, "POST\n/p\n42\nabc\ne3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", got)

	a := svc.BuildCanonicalString("POST", "/p", 42, "abc", `{"a":1}`)
	b := svc.BuildCanonicalString("POST", "/p", 42, "abc", `{"a":2}`)
	assert.NotEqual(t, a, b)
}
