package deploy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/nspcc-dev/neo-go/pkg/core/state"
	"github.com/nspcc-dev/neo-go/pkg/core/transaction"
	"github.com/nspcc-dev/neo-go/pkg/neorpc/result"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/actor"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/management"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/vmstate"
	"github.com/nspcc-dev/neo-go/pkg/wallet"
	"github.com/nspcc-dev/neo-splitter/common"
	"github.com/nspcc-dev/neo-splitter/contracts"
	"github.com/nspcc-dev/neo-splitter/rpc/splitter"
	"go.uber.org/zap"
)

// Blockchain groups services provided by particular Neo blockchain network
// that are required for the Splitter deployment.
type Blockchain interface {
	// RPCActor groups functions needed to compose and send transactions to the
	// blockchain.
	actor.RPCActor

	// GetContractStateByHash returns network state of the smart contract by its
	// address. GetContractStateByHash returns error with 'Unknown contract'
	// substring if requested contract is missing.
	GetContractStateByHash(util.Uint160) (*state.Contract, error)
}

// Prm groups all parameters of the Splitter deployment procedure.
type Prm struct {
	// Writes progress into the log.
	Logger *zap.Logger

	// Particular Neo blockchain instance to deploy the contract to.
	Blockchain Blockchain

	// Local process account used for transaction signing (must be unlocked).
	// Address of the contract depends on it.
	LocalAccount *wallet.Account

	// Compiled contract to deploy.
	Contract contracts.Contract

	// Administrator of the ledger. Defaults to LocalAccount.
	Owner util.Uint160

	// Account allowed to suspend and resume the ledger. Defaults to Owner.
	Pauser util.Uint160
}

// Deploy makes sure the Splitter contract from Prm is deployed and returns its
// address.
//
// If the contract with the same address is already deployed, Deploy updates
// it when its version is older than the local one (LocalAccount must be the
// ledger owner then) and does nothing otherwise. Deploy aborts by context or
// when a transaction fails.
func Deploy(ctx context.Context, prm Prm) (util.Uint160, error) {
	if err := checkPrm(prm); err != nil {
		return util.Uint160{}, fmt.Errorf("invalid parameters: %w", err)
	}

	addr := prm.Contract.Hash(prm.LocalAccount.ScriptHash())
	log := prm.Logger.With(zap.Stringer("address", addr))

	act, err := actor.NewTuned(prm.Blockchain, []actor.SignerAccount{{
		Signer: transaction.Signer{
			Account: prm.LocalAccount.ScriptHash(),
			Scopes:  transaction.CalledByEntry,
		},
		Account: prm.LocalAccount,
	}}, actor.Options{
		CheckerModifier: spanTransactionModifier(prm.Blockchain.GetBlockCount),
	})
	if err != nil {
		return util.Uint160{}, fmt.Errorf("init transaction sender from local account: %w", err)
	}

	_, err = prm.Blockchain.GetContractStateByHash(addr)
	if err == nil {
		log.Info("Splitter contract is already deployed, checking version...")
		return addr, syncContract(ctx, log, act, addr, prm.Contract)
	}

	if !isErrContractNotFound(err) {
		return util.Uint160{}, fmt.Errorf("check presence of the Splitter contract: %w", err)
	}

	owner := prm.Owner
	if owner.Equals(util.Uint160{}) {
		owner = prm.LocalAccount.ScriptHash()
	}

	pauser := prm.Pauser
	if pauser.Equals(util.Uint160{}) {
		pauser = owner
	}

	log.Info("deploying Splitter contract...", zap.Stringer("owner", owner), zap.Stringer("pauser", pauser))

	mgmt := management.New(act)

	_, err = await(ctx, act)(mgmt.Deploy(&prm.Contract.NEF, &prm.Contract.Manifest, []any{owner, pauser}))
	if err != nil {
		return util.Uint160{}, fmt.Errorf("deploy Splitter contract: %w", err)
	}

	log.Info("Splitter contract successfully deployed")

	return addr, nil
}

func syncContract(ctx context.Context, log *zap.Logger, act *actor.Actor, addr util.Uint160, c contracts.Contract) error {
	onChain, err := splitter.NewReader(act, addr).Version()
	if err != nil {
		return fmt.Errorf("read version of the deployed contract: %w", err)
	}

	if onChain.Int64() >= common.Version {
		log.Info("Splitter contract is up to date", zap.Int64("version", onChain.Int64()))
		return nil
	}

	bNEF, err := c.NEF.Bytes()
	if err != nil {
		return fmt.Errorf("encode NEF: %w", err)
	}

	jManifest, err := json.Marshal(c.Manifest)
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}

	log.Info("updating Splitter contract...",
		zap.Int64("from", onChain.Int64()), zap.Int("to", common.Version))

	_, err = await(ctx, act)(splitter.New(act, addr).Update(bNEF, jManifest, nil))
	if err != nil {
		return fmt.Errorf("update Splitter contract: %w", err)
	}

	log.Info("Splitter contract successfully updated")

	return nil
}

// await returns a function waiting for the transaction sent by act to be
// accepted with HALT state. Waiting is aborted by ctx.
func await(ctx context.Context, act *actor.Actor) func(util.Uint256, uint32, error) (*state.AppExecResult, error) {
	return func(h util.Uint256, vub uint32, err error) (*state.AppExecResult, error) {
		if err != nil {
			return nil, fmt.Errorf("send transaction: %w", err)
		}

		type waitRes struct {
			aer *state.AppExecResult
			err error
		}

		ch := make(chan waitRes, 1)
		go func() {
			aer, err := act.Wait(h, vub, nil)
			ch <- waitRes{aer, err}
		}()

		var res waitRes
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("wait for transaction %s: %w", h.StringLE(), ctx.Err())
		case res = <-ch:
		}

		if res.err != nil {
			return nil, fmt.Errorf("wait for transaction %s: %w", h.StringLE(), res.err)
		}

		if res.aer.VMState != vmstate.Halt {
			return nil, fmt.Errorf("transaction %s failed: %s", h.StringLE(), res.aer.FaultException)
		}

		return res.aer, nil
	}
}

func isErrContractNotFound(err error) bool {
	return err != nil && strings.Contains(err.Error(), "Unknown contract")
}

// returns actor.TransactionCheckerModifier which checks that invocation
// finished with 'HALT' state and, if so, sets transaction's nonce and
// ValidUntilBlock to 100*N and 100*(N+1) correspondingly, where
// 100*N <= current height < 100*(N+1). Repeated deployment attempts within
// the same span produce the same transaction.
func spanTransactionModifier(getBlockchainHeight func() (uint32, error)) actor.TransactionCheckerModifier {
	return func(r *result.Invoke, tx *transaction.Transaction) error {
		err := actor.DefaultCheckerModifier(r, tx)
		if err != nil {
			return err
		}

		curHeight, err := getBlockchainHeight()
		if err != nil {
			return fmt.Errorf("get blockchain height: %w", err)
		}

		const span = 100
		n := curHeight / span

		tx.Nonce = n * span

		if math.MaxUint32-span > tx.Nonce {
			tx.ValidUntilBlock = tx.Nonce + span
		} else {
			tx.ValidUntilBlock = math.MaxUint32
		}

		return nil
	}
}

func checkPrm(prm Prm) error {
	switch {
	case prm.Logger == nil:
		return errors.New("nil logger")
	case prm.Blockchain == nil:
		return errors.New("nil blockchain")
	case prm.LocalAccount == nil:
		return errors.New("nil local account")
	case prm.Contract.Manifest.Name != splitter.Name:
		return fmt.Errorf("unexpected contract %q", prm.Contract.Manifest.Name)
	}
	return nil
}
