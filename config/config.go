package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"

	logger "github.com/ElrondNetwork/elrond-go-logger"
	"github.com/pelletier/go-toml"
)

const DefaultConfigPath = "./config/config.toml"

var log = logger.GetOrCreate("config")

type GeneralConfig struct {
	Blockchain BlockchainInformation
	Contract   ContractInformation
	Execution  ExecutionDefaults
	Callback   CallbackInformation
	Store      StoreConfig
	Server     ServerConfig
	Logger     LoggerConfig
}

type BlockchainInformation struct {
	GasPrice uint64
	GasLimit uint64
	ProxyUrl string
	ChainID  string
	PemPath  string
}

// ContractInformation locates the execution service contract requests are sent to.
type ContractInformation struct {
	Address  string
	Endpoint string
}

// ExecutionDefaults selects the computation this integration binds to and the defaults
// applied to requests that do not override them.
type ExecutionDefaults struct {
	ImageID          string
	ProverPublicKey  string
	Tip              uint64
	ResourceBudget   uint64
	VerifyInputHash  bool
	ForwardOutput    bool
	RejectRedelivery bool
}

type CallbackInformation struct {
	TargetProgramID   string
	InstructionPrefix string
	ExtraAccounts     []string
}

type StoreConfig struct {
	DBPath string
}

type ServerConfig struct {
	Port string
}

type LoggerConfig struct {
	LogLevel string
}

func LoadConfig(path string) (GeneralConfig, error) {
	configFile, err := os.Open(path)
	if err != nil {
		return GeneralConfig{}, err
	}
	defer func(configFile *os.File) {
		err = configFile.Close()
		if err != nil {
			log.Error("failure closing file reader", "err", err.Error())
		}
	}(configFile)

	config := &GeneralConfig{}
	err = toml.NewDecoder(configFile).Decode(config)
	if err != nil {
		return GeneralConfig{}, err
	}

	return *config, nil
}

// Validate checks the settings the adapter cannot start without.
func (c GeneralConfig) Validate() error {
	if c.Execution.ImageID == "" {
		return errors.New("missing Execution.ImageID")
	}
	if c.Execution.ProverPublicKey == "" {
		return errors.New("missing Execution.ProverPublicKey")
	}
	if c.Contract.Address == "" {
		return errors.New("missing Contract.Address")
	}
	if c.Store.DBPath == "" {
		return errors.New("missing Store.DBPath")
	}
	if _, err := hex.DecodeString(c.Callback.InstructionPrefix); err != nil {
		return fmt.Errorf("invalid Callback.InstructionPrefix: %w", err)
	}
	return nil
}
