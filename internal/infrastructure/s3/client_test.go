package s3infra

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectContentType(t *testing.T) {
	assert.Equal(t, "image/jpeg", DetectContentType("profile-images/u1/a.JPG"))
	assert.Equal(t, "image/jpeg", DetectContentType("a.jpeg"))
	assert.Equal(t, "image/png", DetectContentType("a.png"))
	assert.Equal(t, "image/gif", DetectContentType("a.gif"))
	assert.Equal(t, "image/webp", DetectContentType("a.webp"))
	assert.Equal(t, "application/octet-stream", DetectContentType("a.bin"))
}
