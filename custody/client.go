/*
Package custody provides a high-level client of the Splitter contract.

Client sends transactions through the contract RPC binding, waits for them to
be accepted and turns the outcome into receipts. Exceptions thrown by the
contract are reported as package errors, so callers can tell a zero deposit
from a missing witness with errors.Is.
*/
package custody

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/nspcc-dev/neo-go/pkg/core/state"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"github.com/nspcc-dev/neo-go/pkg/vm/vmstate"
	"github.com/nspcc-dev/neo-splitter/contracts/splitter/splitterconst"
	"github.com/nspcc-dev/neo-splitter/rpc/splitter"
	"go.uber.org/zap"
)

// Waiter awaits transaction acceptance. *actor.Actor implements it.
type Waiter interface {
	Wait(h util.Uint256, vub uint32, err error) (*state.AppExecResult, error)
}

// Actor is what Client needs to read the contract state and to send
// transactions. *actor.Actor implements it.
type Actor interface {
	splitter.Actor
	Waiter
}

// Prm groups parameters of New.
type Prm struct {
	// Logger of the client operations. Optional.
	Logger *zap.Logger

	// Actor signing and sending transactions.
	Actor Actor

	// Contract is the script hash of the Splitter contract.
	Contract util.Uint160

	// BalancesPageSize limits the number of balances fetched per iterator
	// traversal request. Defaults to 100.
	BalancesPageSize int
}

// Client works with a particular Splitter contract on behalf of the account
// (or accounts) the Actor signs with.
type Client struct {
	log      *zap.Logger
	waiter   Waiter
	inv      splitter.Invoker
	hash     util.Uint160
	reader   *splitter.ContractReader
	contract *splitter.Contract
	pageSize int
}

// New constructs Client from the given parameters.
func New(prm Prm) *Client {
	log := prm.Logger
	if log == nil {
		log = zap.NewNop()
	}

	pageSize := prm.BalancesPageSize
	if pageSize <= 0 {
		pageSize = 100
	}

	return &Client{
		log:      log.With(zap.Stringer("contract", prm.Contract)),
		waiter:   prm.Actor,
		inv:      prm.Actor,
		hash:     prm.Contract,
		reader:   splitter.NewReader(prm.Actor, prm.Contract),
		contract: splitter.New(prm.Actor, prm.Contract),
		pageSize: pageSize,
	}
}

// Split deposits amount of GAS from the depositor account and splits it
// between two recipients. The depositor must be one of the Actor signers
// with a scope allowing both the Splitter and the GAS contracts.
func (c *Client) Split(from, recipientA, recipientB util.Uint160, amount int64) (SplitReceipt, error) {
	var res SplitReceipt

	if _, _, err := SplitShares(amount); err != nil {
		return res, err
	}

	aer, err := c.await(faultKind)(c.contract.Split(from, recipientA, recipientB, big.NewInt(amount)))
	if err != nil {
		return res, fmt.Errorf("split: %w", err)
	}

	ev, err := c.findEvent(aer, splitterconst.SplitEvent)
	if err != nil {
		return res, fmt.Errorf("split: %w", err)
	}

	var split splitter.SplitEvent
	if err = split.FromStackItem(ev.Item); err != nil {
		return res, fmt.Errorf("split: decode notification: %w", err)
	}

	res = SplitReceipt{
		Tx:         aer.Container,
		Depositor:  split.Depositor,
		RecipientA: split.RecipientA,
		RecipientB: split.RecipientB,
		Amount:     split.Amount.Int64(),
	}
	res.Share, res.Remainder, _ = SplitShares(res.Amount)

	c.log.Info("deposit split",
		zap.Stringer("tx", res.Tx),
		zap.Stringer("depositor", res.Depositor),
		zap.Int64("amount", res.Amount),
		zap.Int64("share", res.Share),
		zap.Int64("remainder", res.Remainder))

	return res, nil
}

// Withdraw sends the whole balance of the account to it.
func (c *Client) Withdraw(account util.Uint160) (WithdrawalReceipt, error) {
	var res WithdrawalReceipt

	aer, err := c.await(payoutFaultKind)(c.contract.Withdraw(account))
	if err != nil {
		return res, fmt.Errorf("withdraw: %w", err)
	}

	ev, err := c.findEvent(aer, splitterconst.WithdrawalEvent)
	if err != nil {
		return res, fmt.Errorf("withdraw: %w", err)
	}

	var w splitter.WithdrawalEvent
	if err = w.FromStackItem(ev.Item); err != nil {
		return res, fmt.Errorf("withdraw: decode notification: %w", err)
	}

	res = WithdrawalReceipt{
		Tx:      aer.Container,
		Account: w.Account,
		Amount:  w.Amount.Int64(),
	}

	c.log.Info("balance withdrawn",
		zap.Stringer("tx", res.Tx),
		zap.Stringer("account", res.Account),
		zap.Int64("amount", res.Amount))

	return res, nil
}

// Suspend freezes the ledger.
func (c *Client) Suspend() (StateReceipt, error) {
	return c.transition("suspend", c.contract.Suspend)
}

// Resume unfreezes the ledger.
func (c *Client) Resume() (StateReceipt, error) {
	return c.transition("resume", c.contract.Resume)
}

func (c *Client) transition(op string, send func() (util.Uint256, uint32, error)) (StateReceipt, error) {
	var res StateReceipt

	aer, err := c.await(faultKind)(send())
	if err != nil {
		return res, fmt.Errorf("%s: %w", op, err)
	}

	ev, err := c.findEvent(aer, splitterconst.StateChangedEvent)
	if err != nil {
		return res, fmt.Errorf("%s: %w", op, err)
	}

	var changed splitter.StateChangedEvent
	if err = changed.FromStackItem(ev.Item); err != nil {
		return res, fmt.Errorf("%s: decode notification: %w", op, err)
	}

	res = StateReceipt{Tx: aer.Container, State: State(changed.State.Int64())}

	c.log.Info("ledger state changed", zap.Stringer("tx", res.Tx), zap.Stringer("state", res.State))

	return res, nil
}

// DestroyAndSweep destroys the suspended ledger, moving all GAS it holds to
// the owner.
func (c *Client) DestroyAndSweep() (SweepReceipt, error) {
	var res SweepReceipt

	aer, err := c.await(payoutFaultKind)(c.contract.DestroyAndSweep())
	if err != nil {
		return res, fmt.Errorf("destroy: %w", err)
	}

	if len(aer.Stack) != 1 {
		return res, fmt.Errorf("destroy: unexpected stack size %d", len(aer.Stack))
	}

	swept, err := aer.Stack[0].TryInteger()
	if err != nil {
		return res, fmt.Errorf("destroy: swept amount: %w", err)
	}

	res = SweepReceipt{Tx: aer.Container, Amount: swept.Int64()}

	c.log.Info("ledger destroyed", zap.Stringer("tx", res.Tx), zap.Int64("swept", res.Amount))

	return res, nil
}

// SetPauser changes the account allowed to suspend and resume the ledger.
func (c *Client) SetPauser(pauser util.Uint160) (util.Uint256, error) {
	aer, err := c.await(faultKind)(c.contract.SetPauser(pauser))
	if err != nil {
		return util.Uint256{}, fmt.Errorf("set pauser: %w", err)
	}

	c.log.Info("pauser changed", zap.Stringer("tx", aer.Container), zap.Stringer("pauser", pauser))

	return aer.Container, nil
}

// Balance returns the amount credited to the account.
func (c *Client) Balance(account util.Uint160) (int64, error) {
	b, err := c.reader.BalanceOf(account)
	if err != nil {
		return 0, fmt.Errorf("balance of %s: %w", account.StringLE(), err)
	}

	return b.Int64(), nil
}

// State returns the current state of the ledger.
func (c *Client) State() (State, error) {
	s, err := c.reader.State()
	if err != nil {
		return 0, fmt.Errorf("state: %w", err)
	}

	return State(s.Int64()), nil
}

// Balances returns all non-zero balances.
func (c *Client) Balances() (map[util.Uint160]int64, error) {
	sessionID, iter, err := c.reader.ListBalances()
	if err != nil {
		return nil, fmt.Errorf("list balances: %w", err)
	}

	defer func() {
		if err := c.inv.TerminateSession(sessionID); err != nil {
			c.log.Debug("failed to terminate iterator session", zap.Error(err))
		}
	}()

	res := make(map[util.Uint160]int64)

	for {
		items, err := c.inv.TraverseIterator(sessionID, &iter, c.pageSize)
		if err != nil {
			return nil, fmt.Errorf("traverse balances: %w", err)
		}

		for i := range items {
			acc, amount, err := parseBalance(items[i])
			if err != nil {
				return nil, fmt.Errorf("balance #%d: %w", len(res), err)
			}

			res[acc] = amount
		}

		if len(items) < c.pageSize {
			return res, nil
		}
	}
}

func parseBalance(item stackitem.Item) (util.Uint160, int64, error) {
	kv, ok := item.Value().([]stackitem.Item)
	if !ok || len(kv) != 2 {
		return util.Uint160{}, 0, errors.New("not a key-value pair")
	}

	key, err := kv[0].TryBytes()
	if err != nil {
		return util.Uint160{}, 0, fmt.Errorf("key: %w", err)
	}

	acc, err := util.Uint160DecodeBytesBE(key)
	if err != nil {
		return util.Uint160{}, 0, fmt.Errorf("account: %w", err)
	}

	amount, err := kv[1].TryInteger()
	if err != nil {
		return util.Uint160{}, 0, fmt.Errorf("amount: %w", err)
	}

	return acc, amount.Int64(), nil
}

// await returns a function waiting for the sent transaction and checking it
// has been executed successfully. Exceptions are classified with kindOf.
func (c *Client) await(kindOf func(string) error) func(util.Uint256, uint32, error) (*state.AppExecResult, error) {
	return func(h util.Uint256, vub uint32, err error) (*state.AppExecResult, error) {
		if err != nil {
			return nil, wrapSendError(kindOf, err)
		}

		c.log.Debug("transaction sent", zap.Stringer("tx", h), zap.Uint32("vub", vub))

		aer, err := c.waiter.Wait(h, vub, nil)
		if err != nil {
			return nil, fmt.Errorf("wait for transaction %s: %w", h.StringLE(), err)
		}

		if aer.VMState != vmstate.Halt {
			return nil, faultError(kindOf, aer.FaultException)
		}

		return aer, nil
	}
}

// findEvent returns the first notification with the given name emitted by
// the Splitter contract. Notifications of other contracts called in the same
// transaction, e.g. payment recipients, are ignored.
func (c *Client) findEvent(aer *state.AppExecResult, name string) (state.NotificationEvent, error) {
	for i := range aer.Events {
		if aer.Events[i].ScriptHash.Equals(c.hash) && aer.Events[i].Name == name {
			return aer.Events[i], nil
		}
	}

	return state.NotificationEvent{}, fmt.Errorf("no %s notification in transaction %s", name, aer.Container.StringLE())
}
