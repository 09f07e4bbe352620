package main

import (
	"os"

	"github.com/ElrondNetwork/elrond-exec-adapter/adapter"
	"github.com/ElrondNetwork/elrond-exec-adapter/config"
	logger "github.com/ElrondNetwork/elrond-go-logger"
	"github.com/urfave/cli"
)

var log = logger.GetOrCreate("main")

var (
	configFlag = cli.StringFlag{
		Name:  "config",
		Usage: "path to the toml configuration file",
		Value: config.DefaultConfigPath,
	}
	portFlag = cli.StringFlag{
		Name:  "port",
		Usage: "overrides Server.Port, e.g. :5000",
	}
	logLevelFlag = cli.StringFlag{
		Name:  "log-level",
		Usage: "overrides Logger.LogLevel, e.g. *:DEBUG",
	}
)

func main() {
	app := cli.NewApp()
	app.Name = "elrond-exec-adapter"
	app.Usage = "submits verifiable execution requests and dispatches their authenticated callbacks"
	app.Flags = []cli.Flag{configFlag, portFlag, logLevelFlag}
	app.Action = startAdapter

	if err := app.Run(os.Args); err != nil {
		log.Error("adapter stopped", "err", err.Error())
		os.Exit(1)
	}
}

func startAdapter(ctx *cli.Context) error {
	cfg, err := config.LoadConfig(ctx.String(configFlag.Name))
	if err != nil {
		return err
	}
	if port := ctx.String(portFlag.Name); port != "" {
		cfg.Server.Port = port
	}
	if level := ctx.String(logLevelFlag.Name); level != "" {
		cfg.Logger.LogLevel = level
	}
	if err = cfg.Validate(); err != nil {
		return err
	}
	if cfg.Logger.LogLevel != "" {
		if err = logger.SetLogLevel(cfg.Logger.LogLevel); err != nil {
			return err
		}
	}

	adapterFacade, err := adapter.NewAdapter(cfg)
	if err != nil {
		return err
	}
	defer func() {
		_ = adapterFacade.Close()
	}()

	webServer, err := adapter.NewWebServer(adapterFacade)
	if err != nil {
		return err
	}

	log.Info("adapter bound to computation", "image", cfg.Execution.ImageID, "contract", cfg.Contract.Address)
	return webServer.Run(cfg.Server.Port)
}
