package onboarding

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidURL(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"example.com", true},
		{"https://example.com", true},
		{"http://shop.example.com/path?q=1", true},
		{"tiktok.com/@yourshop", true},
		{"", false},
		{"not a url with spaces", false},
		{"   ", false},
		{"example.com ", true},
		{" https://example.com\n", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidURL(tt.in))
		})
	}
}

func TestNormalizeStoreURL(t *testing.T) {
	assert.Equal(t, "https://mystore.com", NormalizeStoreURL("mystore.com"))
	assert.Equal(t, "http://mystore.com", NormalizeStoreURL("http://mystore.com"))
	assert.Equal(t, "https://mystore.com", NormalizeStoreURL("https://mystore.com"))
	assert.Equal(t, "mystore", NormalizeStoreURL("mystore"))
	assert.Equal(t, "", NormalizeStoreURL(""))
	assert.Equal(t, "https://example.com", NormalizeStoreURL(" example.com "))
	assert.Equal(t, "", NormalizeStoreURL("   "))
}
