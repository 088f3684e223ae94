package main

import (
	"context"
	"fmt"

	"github.com/nspcc-dev/neo-go/pkg/core/transaction"
	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/actor"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/wallet"
)

func rpcOptions(cfg config) rpcclient.Options {
	return rpcclient.Options{
		DialTimeout:    cfg.RPC.DialTimeout,
		RequestTimeout: cfg.RPC.RequestTimeout,
	}
}

// dial opens initialized connection to the configured Neo RPC server.
func dial(ctx context.Context, cfg config) (*rpcclient.Client, error) {
	c, err := rpcclient.New(ctx, cfg.RPC.Endpoint, rpcOptions(cfg))
	if err != nil {
		return nil, fmt.Errorf("RPC client dial: %w", err)
	}

	err = c.Init()
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("RPC client init: %w", err)
	}

	return c, nil
}

// dialWS opens initialized WebSocket connection to the configured Neo RPC
// server.
func dialWS(ctx context.Context, cfg config) (*rpcclient.WSClient, error) {
	c, err := rpcclient.NewWS(ctx, cfg.RPC.Endpoint, rpcclient.WSOptions{Options: rpcOptions(cfg)})
	if err != nil {
		return nil, fmt.Errorf("WebSocket RPC client dial: %w", err)
	}

	err = c.Init()
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("WebSocket RPC client init: %w", err)
	}

	return c, nil
}

// openAccount returns the configured wallet account unlocked with the
// password from the environment. Without explicit account the first one is
// used.
func openAccount(cfg config) (*wallet.Account, error) {
	if cfg.Wallet == "" {
		return nil, fmt.Errorf("missing wallet path")
	}

	w, err := wallet.NewWalletFromFile(cfg.Wallet)
	if err != nil {
		return nil, fmt.Errorf("open wallet: %w", err)
	}
	defer w.Close()

	var acc *wallet.Account

	if cfg.Account != "" {
		h, err := address.StringToUint160(cfg.Account)
		if err != nil {
			return nil, fmt.Errorf("invalid account address: %w", err)
		}

		acc = w.GetAccount(h)
		if acc == nil {
			return nil, fmt.Errorf("account %s is missing in the wallet", cfg.Account)
		}
	} else {
		if len(w.Accounts) == 0 {
			return nil, fmt.Errorf("wallet %s has no accounts", cfg.Wallet)
		}
		acc = w.Accounts[0]
	}

	pass, err := walletPassword()
	if err != nil {
		return nil, err
	}

	err = acc.Decrypt(pass, w.Scrypt)
	if err != nil {
		return nil, fmt.Errorf("unlock account %s: %w", acc.Address, err)
	}

	return acc, nil
}

// newActor returns actor signing with acc. Contracts list the ones the
// witness is passed to, it is limited to the entry script when empty.
func newActor(c *rpcclient.Client, acc *wallet.Account, contracts ...util.Uint160) (*actor.Actor, error) {
	signer := transaction.Signer{
		Account: acc.ScriptHash(),
		Scopes:  transaction.CalledByEntry,
	}

	if len(contracts) > 0 {
		signer.Scopes = transaction.CustomContracts
		signer.AllowedContracts = contracts
	}

	act, err := actor.New(c, []actor.SignerAccount{{
		Signer:  signer,
		Account: acc,
	}})
	if err != nil {
		return nil, fmt.Errorf("init actor: %w", err)
	}

	return act, nil
}

// newReadActor returns actor for read-only calls signed by a throwaway
// account.
func newReadActor(c *rpcclient.Client) (*actor.Actor, error) {
	acc, err := wallet.NewAccount()
	if err != nil {
		return nil, fmt.Errorf("generate new Neo account: %w", err)
	}

	act, err := actor.NewSimple(c, acc)
	if err != nil {
		return nil, fmt.Errorf("init actor: %w", err)
	}

	return act, nil
}

// iterateContractStorage iterates over all storage items of the Neo smart
// contract referenced by given address at the given height and passes them
// into f. iterateContractStorage breaks on any f's error and returns it.
func iterateContractStorage(c *rpcclient.Client, height uint32, contract util.Uint160, f func(key, value []byte) error) error {
	stateRoot, err := c.GetStateRootByHeight(height)
	if err != nil {
		return fmt.Errorf("get state root at block #%d: %w", height, err)
	}

	var start []byte

	for {
		res, err := c.FindStates(stateRoot.Root, contract, nil, start, nil)
		if err != nil {
			return fmt.Errorf("get historical storage items of the requested contract at state root '%s': %w", stateRoot.Root, err)
		}

		for i := range res.Results {
			err = f(res.Results[i].Key, res.Results[i].Value)
			if err != nil {
				return err
			}
		}

		if !res.Truncated {
			return nil
		}

		start = res.Results[len(res.Results)-1].Key
	}
}
