package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-splitter/rpc/splitter"
	"github.com/urfave/cli"
	"gopkg.in/yaml.v3"
)

// passwordEnv is the environment variable with the wallet password.
const passwordEnv = "SPLITTER_WALLET_PASSWORD"

const (
	defaultTimeout = 15 * time.Second
	defaultTopic   = "splitter-events"
)

type rpcConfig struct {
	Endpoint       string        `yaml:"endpoint"`
	DialTimeout    time.Duration `yaml:"dial_timeout"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

type kafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

// config of the CLI. Command-line flags take precedence over the file.
type config struct {
	RPC      rpcConfig   `yaml:"rpc"`
	Wallet   string      `yaml:"wallet"`
	Account  string      `yaml:"account"`
	Contract string      `yaml:"contract"`
	Kafka    kafkaConfig `yaml:"kafka"`
}

func defaultConfig() config {
	return config{
		RPC: rpcConfig{
			DialTimeout:    defaultTimeout,
			RequestTimeout: defaultTimeout,
		},
		Kafka: kafkaConfig{
			Topic: defaultTopic,
		},
	}
}

// readConfig reads YAML configuration from the file at path on top of the
// defaults. Empty path means defaults only.
func readConfig(path string) (config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config file: %w", err)
	}

	err = yaml.Unmarshal(data, &cfg)
	if err != nil {
		return cfg, fmt.Errorf("decode config file %s: %w", path, err)
	}

	return cfg, nil
}

// loadConfig reads the file passed with --config and applies global flags
// set explicitly.
func loadConfig(ctx *cli.Context) (config, error) {
	cfg, err := readConfig(ctx.GlobalString("config"))
	if err != nil {
		return cfg, err
	}

	for name, dst := range map[string]*string{
		"rpc":      &cfg.RPC.Endpoint,
		"wallet":   &cfg.Wallet,
		"account":  &cfg.Account,
		"contract": &cfg.Contract,
	} {
		if ctx.GlobalIsSet(name) {
			*dst = ctx.GlobalString(name)
		}
	}

	if cfg.RPC.Endpoint == "" {
		return cfg, errors.New("missing Neo RPC endpoint")
	}

	return cfg, nil
}

// contractHash returns the configured Splitter contract address.
func (c config) contractHash() (util.Uint160, error) {
	if c.Contract == "" {
		return util.Uint160{}, errors.New("missing Splitter contract address")
	}

	h, err := splitter.ParseHash(c.Contract)
	if err != nil {
		return h, fmt.Errorf("invalid contract: %w", err)
	}

	return h, nil
}

// walletPassword returns the wallet password from the environment, loading
// .env file from the working directory first if there is one.
func walletPassword() (string, error) {
	err := godotenv.Load()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("load .env file: %w", err)
	}

	pass, ok := os.LookupEnv(passwordEnv)
	if !ok {
		return "", fmt.Errorf("wallet password is not set, use %s", passwordEnv)
	}

	return pass, nil
}
