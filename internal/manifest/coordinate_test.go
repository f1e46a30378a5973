package manifest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCoordinate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		path string
		key  string
	}{
		{"plain", "net.minecraftforge:forge:1.12.2-14.23.5.2860", "net/minecraftforge/forge/1.12.2-14.23.5.2860/forge-1.12.2-14.23.5.2860.jar", "net.minecraftforge:forge"},
		{"classifier", "org.lwjgl:lwjgl:3.2.2:natives-linux", "org/lwjgl/lwjgl/3.2.2/lwjgl-3.2.2-natives-linux.jar", "org.lwjgl:lwjgl:natives-linux"},
		{"extension", "de.oceanlabs.mcp:mcp_config:1.16.5-20210115.111550@zip", "de/oceanlabs/mcp/mcp_config/1.16.5-20210115.111550/mcp_config-1.16.5-20210115.111550.zip", "de.oceanlabs.mcp:mcp_config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := ParseCoordinate(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.path, c.Path())
			assert.Equal(t, tt.key, c.Key())
		})
	}
}

func TestParseCoordinateRejectsMalformed(t *testing.T) {
	for _, in := range []string{"", "a", "a:b", "a::c", "a:b:c:d:e", "a:b:c@"} {
		_, err := ParseCoordinate(in)
		assert.Error(t, err, "input %q", in)
	}
}

func TestJoinURL(t *testing.T) {
	assert.Equal(t, "https://x/y/a.jar", joinURL("https://x/y", "a.jar"))
	assert.Equal(t, "https://x/y/a.jar", joinURL("https://x/y/", "/a.jar"))
	assert.Equal(t, "", joinURL("", "a.jar"))
}
