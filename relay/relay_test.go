package relay

import (
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/nspcc-dev/neo-go/pkg/core/state"
	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/neorpc"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type testSubscriber struct {
	flt          *neorpc.NotificationFilter
	ch           chan<- *state.ContainedNotificationEvent
	subscribed   chan struct{}
	unsubscribed bool
	err          error
}

func newTestSubscriber() *testSubscriber {
	return &testSubscriber{subscribed: make(chan struct{})}
}

func (s *testSubscriber) ReceiveExecutionNotifications(flt *neorpc.NotificationFilter, rcvr chan<- *state.ContainedNotificationEvent) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.flt = flt
	s.ch = rcvr
	close(s.subscribed)
	return "1", nil
}

func (s *testSubscriber) Unsubscribe(id string) error {
	s.unsubscribed = id == "1"
	return nil
}

type testPublisher struct {
	mtx  sync.Mutex
	msgs []kafka.Message
	err  error
}

func (p *testPublisher) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	p.mtx.Lock()
	defer p.mtx.Unlock()
	if p.err != nil {
		return p.err
	}
	p.msgs = append(p.msgs, msgs...)
	return nil
}

func (p *testPublisher) messages() []kafka.Message {
	p.mtx.Lock()
	defer p.mtx.Unlock()
	return append([]kafka.Message(nil), p.msgs...)
}

func notification(tx util.Uint256, name string, items ...any) *state.ContainedNotificationEvent {
	arr := make([]stackitem.Item, 0, len(items))
	for i := range items {
		arr = append(arr, stackitem.Make(items[i]))
	}

	return &state.ContainedNotificationEvent{
		Container: tx,
		NotificationEvent: state.NotificationEvent{
			Name: name,
			Item: stackitem.NewArray(arr),
		},
	}
}

func startRelay(t *testing.T, sub *testSubscriber, pub *testPublisher) (context.CancelFunc, <-chan error) {
	ctx, cancel := context.WithCancel(context.Background())
	r := New(Prm{
		Logger:     zaptest.NewLogger(t),
		Subscriber: sub,
		Publisher:  pub,
		Contract:   util.Uint160{1, 2, 3},
	})

	res := make(chan error, 1)
	go func() { res <- r.Run(ctx) }()

	select {
	case <-sub.subscribed:
	case <-time.After(5 * time.Second):
		t.Fatal("relay did not subscribe")
	}

	return cancel, res
}

func wait(t *testing.T, res <-chan error) error {
	select {
	case err := <-res:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("relay did not stop")
	}
	return nil
}

func TestRelay(t *testing.T) {
	depositor := util.Uint160{1}
	a, b := util.Uint160{2}, util.Uint160{3}
	tx := util.Uint256{4, 5, 6}

	sub, pub := newTestSubscriber(), new(testPublisher)
	cancel, res := startRelay(t, sub, pub)

	require.NotNil(t, sub.flt.Contract)
	require.Equal(t, util.Uint160{1, 2, 3}, *sub.flt.Contract)

	sub.ch <- notification(tx, "Split", depositor.BytesBE(), a.BytesBE(), b.BytesBE(), 1_5000_0001)
	sub.ch <- notification(tx, "Transfer", []byte{}, []byte{}, 1)
	sub.ch <- notification(tx, "Withdrawal", a.BytesBE(), 7500_0000)
	sub.ch <- notification(tx, "StateChanged", 1)

	cancel()
	require.NoError(t, wait(t, res))
	require.True(t, sub.unsubscribed)

	msgs := pub.messages()
	require.Len(t, msgs, 3)

	var m Message
	for i := range msgs {
		require.Equal(t, tx.StringLE(), string(msgs[i].Key))
	}

	require.NoError(t, json.Unmarshal(msgs[0].Value, &m))
	require.Equal(t, "Split", m.Event)
	require.Equal(t, tx.StringLE(), m.Tx)
	require.Equal(t, address.Uint160ToString(depositor), m.Depositor)
	require.Equal(t, address.Uint160ToString(a), m.RecipientA)
	require.Equal(t, address.Uint160ToString(b), m.RecipientB)
	require.Equal(t, "1.50000001", m.Amount.String())

	m = Message{}
	require.NoError(t, json.Unmarshal(msgs[1].Value, &m))
	require.Equal(t, "Withdrawal", m.Event)
	require.Equal(t, address.Uint160ToString(a), m.Account)
	require.Equal(t, "0.75", m.Amount.String())
	require.Empty(t, m.Depositor)

	m = Message{}
	require.NoError(t, json.Unmarshal(msgs[2].Value, &m))
	require.Equal(t, "StateChanged", m.Event)
	require.Equal(t, "suspended", m.State)
	require.Nil(t, m.Amount)
}

func TestRelay_Failures(t *testing.T) {
	t.Run("subscription", func(t *testing.T) {
		sub := newTestSubscriber()
		sub.err = errors.New("connection refused")

		r := New(Prm{Subscriber: sub, Publisher: new(testPublisher)})
		require.ErrorContains(t, r.Run(context.Background()), "connection refused")
	})

	t.Run("closed channel", func(t *testing.T) {
		sub := newTestSubscriber()
		_, res := startRelay(t, sub, new(testPublisher))

		close(sub.ch)
		require.ErrorIs(t, wait(t, res), ErrSubscriptionClosed)
	})

	t.Run("publishing", func(t *testing.T) {
		sub, pub := newTestSubscriber(), new(testPublisher)
		pub.err = errors.New("broker unavailable")
		_, res := startRelay(t, sub, pub)

		sub.ch <- notification(util.Uint256{}, "StateChanged", 2)
		require.ErrorContains(t, wait(t, res), "broker unavailable")
		require.True(t, sub.unsubscribed)
	})

	t.Run("malformed event", func(t *testing.T) {
		sub := newTestSubscriber()
		_, res := startRelay(t, sub, new(testPublisher))

		sub.ch <- notification(util.Uint256{}, "Withdrawal", 1)
		require.Error(t, wait(t, res))
	})
}

func TestGasAmount(t *testing.T) {
	require.Equal(t, "0.00000001", gasAmount(big.NewInt(1)).String())
	require.Equal(t, "21", gasAmount(big.NewInt(21_0000_0000)).String())
	require.Equal(t, "0", gasAmount(big.NewInt(0)).String())
}
