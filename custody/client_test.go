package custody

import (
	"errors"
	"math/big"
	"testing"

	"github.com/google/uuid"
	"github.com/nspcc-dev/neo-go/pkg/core/state"
	"github.com/nspcc-dev/neo-go/pkg/core/transaction"
	"github.com/nspcc-dev/neo-go/pkg/neorpc/result"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"github.com/nspcc-dev/neo-go/pkg/vm/vmstate"
	"github.com/nspcc-dev/neo-splitter/contracts/splitter/splitterconst"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type call struct {
	method string
	params []any
}

type testActor struct {
	sendErr error
	aer     *state.AppExecResult
	waitErr error

	res   *result.Invoke
	pages [][]stackitem.Item

	calls      []call
	terminated bool
}

func (a *testActor) Call(_ util.Uint160, method string, params ...any) (*result.Invoke, error) {
	a.calls = append(a.calls, call{method, params})
	return a.res, nil
}

func (a *testActor) CallAndExpandIterator(_ util.Uint160, method string, _ int, params ...any) (*result.Invoke, error) {
	return a.Call(util.Uint160{}, method, params...)
}

func (a *testActor) TerminateSession(uuid.UUID) error {
	a.terminated = true
	return nil
}

func (a *testActor) TraverseIterator(_ uuid.UUID, _ *result.Iterator, _ int) ([]stackitem.Item, error) {
	if len(a.pages) == 0 {
		return nil, nil
	}
	page := a.pages[0]
	a.pages = a.pages[1:]
	return page, nil
}

func (a *testActor) MakeCall(util.Uint160, string, ...any) (*transaction.Transaction, error) {
	panic("not implemented")
}

func (a *testActor) MakeRun([]byte) (*transaction.Transaction, error) {
	panic("not implemented")
}

func (a *testActor) MakeUnsignedCall(util.Uint160, string, []transaction.Attribute, ...any) (*transaction.Transaction, error) {
	panic("not implemented")
}

func (a *testActor) MakeUnsignedRun([]byte, []transaction.Attribute) (*transaction.Transaction, error) {
	panic("not implemented")
}

func (a *testActor) SendCall(_ util.Uint160, method string, params ...any) (util.Uint256, uint32, error) {
	a.calls = append(a.calls, call{method, params})
	return a.aer.Container, 100, a.sendErr
}

func (a *testActor) SendRun([]byte) (util.Uint256, uint32, error) {
	panic("not implemented")
}

func (a *testActor) Wait(h util.Uint256, _ uint32, err error) (*state.AppExecResult, error) {
	if err != nil {
		return nil, err
	}
	return a.aer, a.waitErr
}

func haltWith(stack []stackitem.Item, events ...state.NotificationEvent) *state.AppExecResult {
	return &state.AppExecResult{
		Container: util.Uint256{1, 2, 3},
		Execution: state.Execution{
			VMState: vmstate.Halt,
			Stack:   stack,
			Events:  events,
		},
	}
}

// testContract is the Splitter address of the clients under test.
var testContract = util.Uint160{9}

func event(name string, items ...any) state.NotificationEvent {
	return contractEvent(testContract, name, items...)
}

func contractEvent(contract util.Uint160, name string, items ...any) state.NotificationEvent {
	arr := make([]stackitem.Item, len(items))
	for i := range items {
		arr[i] = stackitem.Make(items[i])
	}
	return state.NotificationEvent{ScriptHash: contract, Name: name, Item: stackitem.NewArray(arr)}
}

func newTestClient(t *testing.T, a *testActor) *Client {
	return New(Prm{
		Logger:           zaptest.NewLogger(t),
		Actor:            a,
		Contract:         testContract,
		BalancesPageSize: 2,
	})
}

func TestClient_Split(t *testing.T) {
	from, a, b := util.Uint160{1}, util.Uint160{2}, util.Uint160{3}

	t.Run("zero deposit is not sent", func(t *testing.T) {
		act := new(testActor)
		_, err := newTestClient(t, act).Split(from, a, b, 0)
		require.ErrorIs(t, err, ErrZeroValueDeposit)
		require.Empty(t, act.calls)
	})

	t.Run("receipt", func(t *testing.T) {
		act := &testActor{aer: haltWith(nil,
			event("Transfer", from.BytesBE(), util.Uint160{9}.BytesBE(), 11),
			event(splitterconst.SplitEvent, from.BytesBE(), a.BytesBE(), b.BytesBE(), 11),
		)}

		r, err := newTestClient(t, act).Split(from, a, b, 11)
		require.NoError(t, err)
		require.Equal(t, SplitReceipt{
			Tx:         act.aer.Container,
			Depositor:  from,
			RecipientA: a,
			RecipientB: b,
			Amount:     11,
			Share:      5,
			Remainder:  1,
		}, r)
		require.Equal(t, []call{{"split", []any{from, a, b, big.NewInt(11)}}}, act.calls)
	})

	t.Run("rejected by test invocation", func(t *testing.T) {
		act := &testActor{
			aer:     haltWith(nil),
			sendErr: errors.New("script failed (FAULT state) due to an error: at instruction 1 (THROW): unhandled exception: \"invalid state transition\""),
		}

		_, err := newTestClient(t, act).Split(from, a, b, 10)
		require.ErrorIs(t, err, ErrInvalidStateTransition)
	})

	t.Run("faulted transaction", func(t *testing.T) {
		aer := haltWith(nil)
		aer.VMState = vmstate.Fault
		aer.FaultException = "at instruction 42 (THROW): unhandled exception: \"transfer failed\""

		_, err := newTestClient(t, &testActor{aer: aer}).Split(from, a, b, 10)
		require.ErrorIs(t, err, ErrTransferFailed)

		aer.FaultException = "ABORT"
		_, err = newTestClient(t, &testActor{aer: aer}).Split(from, a, b, 10)
		require.ErrorIs(t, err, ErrFault)
	})

	t.Run("destroyed ledger", func(t *testing.T) {
		_, err := newTestClient(t, &testActor{aer: haltWith([]stackitem.Item{stackitem.Null{}})}).Split(from, a, b, 10)
		require.ErrorContains(t, err, "no Split notification")
	})
}

func TestClient_Withdraw(t *testing.T) {
	acc := util.Uint160{1}

	act := &testActor{aer: haltWith([]stackitem.Item{stackitem.Make(5)},
		event(splitterconst.WithdrawalEvent, acc.BytesBE(), 5),
	)}

	r, err := newTestClient(t, act).Withdraw(acc)
	require.NoError(t, err)
	require.Equal(t, WithdrawalReceipt{Tx: act.aer.Container, Account: acc, Amount: 5}, r)

	act.aer.VMState = vmstate.Fault
	act.aer.FaultException = "unhandled exception: \"nothing to withdraw\""
	_, err = newTestClient(t, act).Withdraw(acc)
	require.ErrorIs(t, err, ErrNothingToWithdraw)

	act.waitErr = errors.New("timeout")
	_, err = newTestClient(t, act).Withdraw(acc)
	require.ErrorContains(t, err, "timeout")

	t.Run("notification of the recipient", func(t *testing.T) {
		recipient := util.Uint160{7}
		act := &testActor{aer: haltWith([]stackitem.Item{stackitem.Make(5)},
			contractEvent(recipient, splitterconst.WithdrawalEvent, acc.BytesBE(), 1_000_000),
			event(splitterconst.WithdrawalEvent, acc.BytesBE(), 5),
		)}

		r, err := newTestClient(t, act).Withdraw(acc)
		require.NoError(t, err)
		require.EqualValues(t, 5, r.Amount)

		act.aer.Events = act.aer.Events[:1]
		_, err = newTestClient(t, act).Withdraw(acc)
		require.ErrorContains(t, err, "no Withdrawal notification")
	})

	t.Run("rejected payment", func(t *testing.T) {
		const exception = "at instruction 62 (SYSCALL): failed native call: at instruction 94 (SYSCALL): " +
			"context unload callback failed: unhandled exception, uncaught exception: \"payment rejected\""

		act := &testActor{aer: &state.AppExecResult{
			Container: util.Uint256{1},
			Execution: state.Execution{VMState: vmstate.Fault, FaultException: exception},
		}}

		_, err := newTestClient(t, act).Withdraw(acc)
		require.ErrorIs(t, err, ErrTransferFailed)
		require.NotErrorIs(t, err, ErrFault)

		act.aer.FaultException = "failed native call: uncaught exception: \"nothing to withdraw\""
		_, err = newTestClient(t, act).Withdraw(acc)
		require.ErrorIs(t, err, ErrTransferFailed)
		require.NotErrorIs(t, err, ErrNothingToWithdraw)

		act.sendErr = errors.New("script failed (FAULT state) due to an error: " + exception)
		_, err = newTestClient(t, act).Withdraw(acc)
		require.ErrorIs(t, err, ErrTransferFailed)

		act.sendErr = nil
		_, err = newTestClient(t, act).Suspend()
		require.NotErrorIs(t, err, ErrTransferFailed)
	})
}

func TestClient_Lifecycle(t *testing.T) {
	act := &testActor{aer: haltWith(nil, event(splitterconst.StateChangedEvent, splitterconst.Suspended))}
	c := newTestClient(t, act)

	r, err := c.Suspend()
	require.NoError(t, err)
	require.Equal(t, Suspended, r.State)

	act.aer = haltWith(nil, event(splitterconst.StateChangedEvent, splitterconst.Active))
	r, err = c.Resume()
	require.NoError(t, err)
	require.Equal(t, Active, r.State)

	act.aer = haltWith([]stackitem.Item{stackitem.Make(28)}, event(splitterconst.StateChangedEvent, splitterconst.Destroyed))
	s, err := c.DestroyAndSweep()
	require.NoError(t, err)
	require.EqualValues(t, 28, s.Amount)

	act.aer = haltWith([]stackitem.Item{})
	_, err = c.DestroyAndSweep()
	require.Error(t, err)

	require.Equal(t, []string{"suspend", "resume", "destroyAndSweep", "destroyAndSweep"}, methods(act.calls))
}

func TestClient_Reads(t *testing.T) {
	act := &testActor{res: &result.Invoke{State: vmstate.Halt.String(), Stack: []stackitem.Item{stackitem.Make(2)}}}
	c := newTestClient(t, act)

	b, err := c.Balance(util.Uint160{1})
	require.NoError(t, err)
	require.EqualValues(t, 2, b)

	s, err := c.State()
	require.NoError(t, err)
	require.Equal(t, Destroyed, s)
	require.Equal(t, "destroyed", s.String())

	act.res = &result.Invoke{State: vmstate.Fault.String(), FaultException: "bad"}
	_, err = c.State()
	require.Error(t, err)
}

func TestClient_Balances(t *testing.T) {
	pair := func(acc util.Uint160, amount int64) stackitem.Item {
		return stackitem.NewStruct([]stackitem.Item{stackitem.Make(acc.BytesBE()), stackitem.Make(amount)})
	}

	act := &testActor{
		res: &result.Invoke{
			State:   vmstate.Halt.String(),
			Session: uuid.New(),
			Stack: []stackitem.Item{stackitem.NewInterop(result.Iterator{
				ID: &uuid.UUID{},
			})},
		},
		pages: [][]stackitem.Item{
			{pair(util.Uint160{1}, 5), pair(util.Uint160{2}, 6)},
			{pair(util.Uint160{3}, 1)},
		},
	}

	res, err := newTestClient(t, act).Balances()
	require.NoError(t, err)
	require.Equal(t, map[util.Uint160]int64{
		{1}: 5,
		{2}: 6,
		{3}: 1,
	}, res)
	require.True(t, act.terminated)

	_, _, err = parseBalance(stackitem.Make(1))
	require.Error(t, err)
}

func TestSplitShares(t *testing.T) {
	for _, tc := range []struct {
		amount, share, remainder int64
	}{
		{1, 0, 1},
		{2, 1, 0},
		{11, 5, 1},
		{1_0000_0000, 5000_0000, 0},
	} {
		share, remainder, err := SplitShares(tc.amount)
		require.NoError(t, err)
		require.Equal(t, tc.share, share, tc.amount)
		require.Equal(t, tc.remainder, remainder, tc.amount)
		require.Equal(t, tc.amount, 2*share+remainder)
	}

	_, _, err := SplitShares(-1)
	require.ErrorIs(t, err, ErrZeroValueDeposit)
}

func methods(calls []call) []string {
	res := make([]string, len(calls))
	for i := range calls {
		res[i] = calls[i].method
	}
	return res
}
