package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadConfig_ShippedConfigShouldWork(t *testing.T) {
	t.Parallel()
	cfg, err := LoadConfig("config.toml")
	require.Nil(t, err)
	require.Nil(t, cfg.Validate())

	require.Equal(t, "dcf7509f3f8fc58f90a99dab085e3b60fcbdd7a169b2c5e3b73af2f35ad480a0", cfg.Execution.ImageID)
	require.Equal(t, uint64(1), cfg.Execution.Tip)
	require.Equal(t, uint64(100), cfg.Execution.ResourceBudget)
	require.False(t, cfg.Execution.VerifyInputHash)
	require.True(t, cfg.Execution.ForwardOutput)
	require.True(t, cfg.Execution.RejectRedelivery)
	require.Equal(t, "00", cfg.Callback.InstructionPrefix)
	require.Equal(t, ":5000", cfg.Server.Port)
	require.Equal(t, "*:INFO", cfg.Logger.LogLevel)
}

func TestLoadConfig_CustomImageShouldWork(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[Contract]
    Address = "erd1spyavw0956vq68xj8y4tenjpq2wd5a9p2c6j8gsz7ztyrnpxrruqzu66jx"

[Execution]
    ImageID = "7f8ebdabe3ed69b8d47b2cbc86e8668d171e1a0ced01610fd1ecc224db69767b"
    ProverPublicKey = "ea4a6c63e29c520abef5507b132ec5f9954776aebebe7b92421eea691446d22c"

[Callback]
    ExtraAccounts = ["erd1qyu5wthldzr8wx5c9ucg8kjagg0jfs53s8nr3zpz3hypefsdd8ssycr6th"]

[Store]
    DBPath = "requests.db"
`
	require.Nil(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := LoadConfig(path)
	require.Nil(t, err)
	require.Nil(t, cfg.Validate())
	require.Equal(t, "7f8ebdabe3ed69b8d47b2cbc86e8668d171e1a0ced01610fd1ecc224db69767b", cfg.Execution.ImageID)
	require.Len(t, cfg.Callback.ExtraAccounts, 1)
}

func TestLoadConfig_MissingFileShouldErr(t *testing.T) {
	t.Parallel()
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
}

func TestGeneralConfig_ValidateShouldErr(t *testing.T) {
	t.Parallel()
	valid := GeneralConfig{
		Contract:  ContractInformation{Address: "erd1contract"},
		Execution: ExecutionDefaults{ImageID: "id", ProverPublicKey: "key"},
		Store:     StoreConfig{DBPath: "requests.db"},
	}
	require.Nil(t, valid.Validate())

	noImage := valid
	noImage.Execution.ImageID = ""
	require.Error(t, noImage.Validate())

	noKey := valid
	noKey.Execution.ProverPublicKey = ""
	require.Error(t, noKey.Validate())

	noContract := valid
	noContract.Contract.Address = ""
	require.Error(t, noContract.Validate())

	noStore := valid
	noStore.Store.DBPath = ""
	require.Error(t, noStore.Validate())

	badPrefix := valid
	badPrefix.Callback.InstructionPrefix = "zz"
	require.Error(t, badPrefix.Validate())
}
