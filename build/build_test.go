package build

import (
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Parallel()

	info, ok := Parse(`{"version":"v1.4.0","git_commit":"0123456789abcdef","go_version":"go1.25.0",` +
		`"dependencies":{"github.com/redis/go-redis/v9":"v9.17.2"}}`)
	require.True(t, ok)
	assert.Equal(t, "v1.4.0", info.Version)
	assert.Equal(t, "v9.17.2", info.Dependencies["github.com/redis/go-redis/v9"])

	for _, js := range []string{"", "{}", "{not json"} {
		info, ok := Parse(js)
		assert.False(t, ok, js)
		assert.Nil(t, info)
	}
}

func TestFromBuildInfo(t *testing.T) {
	t.Parallel()

	info := FromBuildInfo(&debug.BuildInfo{
		GoVersion: "go1.25.0",
		Main:      debug.Module{Path: "github.com/amp-labs/secflow"},
		Deps: []*debug.Module{
			{Path: "github.com/spf13/cobra", Version: "v1.10.2"},
			{
				Path:    "github.com/zeebo/xxh3",
				Version: "v1.0.2",
				Replace: &debug.Module{Path: "github.com/zeebo/xxh3", Version: "v1.0.3"},
			},
		},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "0123456789abcdef0123"},
			{Key: "vcs.time", Value: "2026-10-01T12:00:00Z"},
		},
	})

	assert.Equal(t, unknownVersion, info.Version)
	assert.Equal(t, "v1.10.2", info.Dependencies["github.com/spf13/cobra"])
	assert.Equal(t, "v1.0.3", info.Dependencies["github.com/zeebo/xxh3"])
	assert.Equal(t, "secflow (devel) (0123456789ab, 2026-10-01T12:00:00Z) go1.25.0", info.String())
}

func TestCurrent(t *testing.T) {
	t.Parallel()

	info := Current()
	assert.NotEmpty(t, info.Version)
	assert.Equal(t, info, Current())
}
