package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/ulib-broker/internal/config"
	"github.com/calvinalkan/ulib-broker/pkg/ipc"
)

func Test_Load_Missing_File_Returns_Defaults(t *testing.T) {
	t.Parallel()

	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.jsonc"))
	require.NoError(t, err)
	require.Equal(t, config.Default(), cfg)
}

func Test_Load_Parses_JSONC_With_Comments(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "ulibctl.jsonc")
	body := `{
		// prefer exact version matches
		"match_criteria": "equals",
		"registry_image": "/tmp/custom.img",
	}`

	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, "equals", cfg.MatchCriteria)
	require.Equal(t, "/tmp/custom.img", cfg.RegistryImage)
	require.Equal(t, ipc.Equals, cfg.MatchCriteriaValue())
}

func Test_Load_Rejects_Invalid_JSONC(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bad.jsonc")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := config.Load(path)
	require.Error(t, err)
}

func Test_MatchCriteriaValue_Defaults_To_Any_For_Unknown_Name(t *testing.T) {
	t.Parallel()

	cfg := config.Config{MatchCriteria: "nonsense"}
	require.Equal(t, ipc.Any, cfg.MatchCriteriaValue())
}
