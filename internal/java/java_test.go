package java

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecommend(t *testing.T) {
	tests := []struct {
		version string
		want    int
	}{
		{"1.7.10", 8},
		{"1.12.2", 8},
		{"1.12.2-14.23.5.2859", 8},
		{"1.13", 11},
		{"1.16.5", 11},
		{"1.17", 17},
		{"1.18.2", 17},
		{"1.20.4", 17},
		{"1.20.5", 21},
		{"1.21.1-52.0.16", 21},
	}
	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			got, ok := Recommend(tt.version)
			assert.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRecommendUnknown(t *testing.T) {
	for _, v := range []string{"", "  ", "23w13a", "-1.12"} {
		_, ok := Recommend(v)
		assert.False(t, ok, v)
		assert.Empty(t, Advice(v), v)
	}
}

func TestAdvice(t *testing.T) {
	assert.Equal(t, "Minecraft 1.12.2 installers run best on Java 8", Advice("1.12.2"))
}
