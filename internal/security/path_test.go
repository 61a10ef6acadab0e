package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateFilePath(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{"absolute path", "/var/lib/tgsentry/messages.db", false},
		{"relative path", "data/messages.db", false},
		{"empty", "", true},
		{"null byte", "data\x00.db", true},
		{"traversal", "../../etc/passwd", true},
		{"embedded traversal", "data/../../secret", true},
		{"dot segments cleaned", "data/./messages.db", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFilePath(tt.path)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSanitizeFileName(t *testing.T) {
	assert.Equal(t, "photo_10", SanitizeFileName("photo_10"))
	assert.Equal(t, "_etc_passwd", SanitizeFileName("/etc/passwd"))
	assert.Equal(t, "_secret", SanitizeFileName("..secret"))
	assert.Equal(t, "a_b", SanitizeFileName(`a\b`))
}
