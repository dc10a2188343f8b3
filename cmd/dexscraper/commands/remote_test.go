package commands

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

func remoteFlags(t *testing.T, args ...string) *pflag.FlagSet {
	flags := pflag.NewFlagSet("remote", pflag.ContinueOnError)
	flags.String("bucket", "", "")
	flags.String("prefix", "", "")
	flags.Int("limit", 0, "")
	require.NoError(t, flags.Parse(args))
	return flags
}

func TestResolveRemoteTarget(t *testing.T) {
	cfg := DefaultConfig().ObjectStore

	target, err := resolveRemoteTarget(cfg, remoteFlags(t))
	require.NoError(t, err)
	require.Equal(t, remoteTarget{Bucket: "dex-images", Prefix: "images"}, target)

	target, err = resolveRemoteTarget(cfg, remoteFlags(t, "--bucket", "other", "--prefix", "art", "--limit", "10"))
	require.NoError(t, err)
	require.Equal(t, remoteTarget{Bucket: "other", Prefix: "art", Limit: 10}, target)

	// an explicitly empty prefix is kept
	target, err = resolveRemoteTarget(cfg, remoteFlags(t, "--prefix", ""))
	require.NoError(t, err)
	require.Equal(t, "", target.Prefix)
	require.Equal(t, "dex-images", target.Bucket)
}

func TestResolveRemoteTargetInvalid(t *testing.T) {
	cfg := DefaultConfig().ObjectStore

	_, err := resolveRemoteTarget(cfg, remoteFlags(t, "--bucket", " "))
	require.Error(t, err)

	_, err = resolveRemoteTarget(cfg, remoteFlags(t, "--limit", "-1"))
	require.Error(t, err)

	cfg.Bucket = ""
	_, err = resolveRemoteTarget(cfg, remoteFlags(t))
	require.Error(t, err)
}

func TestRemoteCommandFlags(t *testing.T) {
	for _, name := range []string{"bucket", "prefix", "limit"} {
		require.NotNil(t, remoteCmd.Flags().Lookup(name), name)
	}
}
