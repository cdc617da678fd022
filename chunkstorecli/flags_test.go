package chunkstorecli_test

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/erigontech/chunkstore/chunkstorecli"
)

func TestConfigFromFlagsDefaults(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	chunkstorecli.RegisterFlags(fs)

	cfg, err := chunkstorecli.ConfigFromFlags(fs)
	require.NoError(t, err)
	require.True(t, cfg.EnableChangelog)
	require.Equal(t, uint64(4096), cfg.ChunkMaxRows)
}

func TestConfigFromFlagsOverride(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	chunkstorecli.RegisterFlags(fs)
	require.NoError(t, fs.Parse([]string{"--" + chunkstorecli.FlagEnableChangelog + "=false", "--" + chunkstorecli.FlagGCProtectLatest + "=3"}))

	cfg, err := chunkstorecli.ConfigFromFlags(fs)
	require.NoError(t, err)
	require.False(t, cfg.EnableChangelog)
	require.Equal(t, 3, cfg.GCProtectLatestDefault)
}
