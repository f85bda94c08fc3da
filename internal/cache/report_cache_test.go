package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFingerprint(t *testing.T) {
	key := Fingerprint("abc123", 42, "65a1f2")
	assert.Equal(t, "survey:analysis:v1:abc123:42:65a1f2", key)
}

func TestFingerprintChangesWithData(t *testing.T) {
	base := Fingerprint("abc123", 42, "65a1f2")
	assert.NotEqual(t, base, Fingerprint("abc123", 43, "65a1f2"))
	assert.NotEqual(t, base, Fingerprint("abc123", 42, "65a1f3"))
	assert.NotEqual(t, base, Fingerprint("other", 42, "65a1f2"))
}

func TestSurveyPrefixCoversAllFingerprints(t *testing.T) {
	assert.Equal(t, "survey:analysis:v1:abc123:*", surveyPrefix("abc123"))
}
