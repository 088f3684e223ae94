package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/nspcc-dev/neo-splitter/relay"
	"github.com/nspcc-dev/neo-splitter/rpc/splitter"
	"github.com/urfave/cli"
	"go.uber.org/zap"
)

func relayCommands() []cli.Command {
	return []cli.Command{
		{
			Name:  "relay",
			Usage: "Publish contract events to Kafka until interrupted (RPC endpoint must be WebSocket)",
			Flags: []cli.Flag{
				cli.StringSliceFlag{
					Name:  "broker",
					Usage: "Kafka broker address, may be repeated",
				},
				cli.StringFlag{
					Name:  "topic",
					Usage: "Kafka topic",
				},
			},
			Action: runRelay,
		},
	}
}

func runRelay(ctx *cli.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return cli.NewExitError(err, 1)
	}

	if ctx.IsSet("broker") {
		cfg.Kafka.Brokers = ctx.StringSlice("broker")
	}
	if ctx.IsSet("topic") {
		cfg.Kafka.Topic = ctx.String("topic")
	}

	if len(cfg.Kafka.Brokers) == 0 {
		return cli.NewExitError(errors.New("missing Kafka brokers"), 1)
	}

	contract, err := cfg.contractHash()
	if err != nil {
		return cli.NewExitError(err, 1)
	}

	log, err := newLogger(ctx)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	defer func() { _ = log.Sync() }()

	sigCtx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	c, err := dialWS(sigCtx, cfg)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	defer c.Close()

	err = splitter.CheckDeployed(c, contract)
	if err != nil {
		return cli.NewExitError(err, 1)
	}

	w := relay.NewWriter(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	defer func() {
		if err := w.Close(); err != nil {
			log.Warn("failed to close Kafka writer", zap.Error(err))
		}
	}()

	r := relay.New(relay.Prm{
		Logger:     log.With(zap.String("topic", cfg.Kafka.Topic)),
		Subscriber: c,
		Publisher:  w,
		Contract:   contract,
	})

	err = r.Run(sigCtx)
	if err != nil {
		return cli.NewExitError(err, 1)
	}

	return nil
}
