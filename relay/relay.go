/*
Package relay forwards notifications of the Splitter contract to Kafka.

Relay subscribes to execution notifications of a single contract over the
WebSocket RPC, decodes Split, Withdrawal and StateChanged events and publishes
each of them as a JSON Message keyed by the hash of the transaction that
emitted it. Amounts are rendered as decimal GAS.
*/
package relay

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"

	"github.com/nspcc-dev/neo-go/pkg/core/state"
	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/neorpc"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-splitter/contracts/splitter/splitterconst"
	"github.com/nspcc-dev/neo-splitter/custody"
	"github.com/nspcc-dev/neo-splitter/rpc/splitter"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// gasPrecision is the number of decimals of the GAS token.
const gasPrecision = 8

// Subscriber provides contract notifications. *rpcclient.WSClient implements
// it.
type Subscriber interface {
	ReceiveExecutionNotifications(flt *neorpc.NotificationFilter, rcvr chan<- *state.ContainedNotificationEvent) (string, error)
	Unsubscribe(id string) error
}

// Publisher delivers messages to the broker. *kafka.Writer implements it.
type Publisher interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// Message is the JSON document published for every contract event. Fields
// irrelevant to the event are omitted.
type Message struct {
	Tx    string `json:"tx"`
	Event string `json:"event"`

	Depositor  string `json:"depositor,omitempty"`
	RecipientA string `json:"recipient_a,omitempty"`
	RecipientB string `json:"recipient_b,omitempty"`
	Account    string `json:"account,omitempty"`

	Amount *decimal.Decimal `json:"amount,omitempty"`
	State  string           `json:"state,omitempty"`
}

// Prm groups parameters of New.
type Prm struct {
	Logger     *zap.Logger
	Subscriber Subscriber
	Publisher  Publisher
	// Contract is the script hash of the Splitter contract to listen to.
	Contract util.Uint160
}

// Relay transfers contract events from the chain to the broker.
type Relay struct {
	log      *zap.Logger
	sub      Subscriber
	pub      Publisher
	contract util.Uint160
}

// ErrSubscriptionClosed is returned by Run when the notification channel is
// closed by the RPC client, e.g. on connection loss.
var ErrSubscriptionClosed = errors.New("notification subscription closed")

// New constructs Relay from the given parameters.
func New(prm Prm) *Relay {
	log := prm.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return &Relay{
		log:      log.With(zap.Stringer("contract", prm.Contract)),
		sub:      prm.Subscriber,
		pub:      prm.Publisher,
		contract: prm.Contract,
	}
}

// NewWriter returns Kafka writer publishing to the given topic.
func NewWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    topic,
		Balancer: &kafka.Hash{},
	}
}

// Run relays events until ctx is done or the subscription is lost. Context
// cancellation is not reported as an error. Events of unknown names are
// skipped, malformed ones abort Run.
func (r *Relay) Run(ctx context.Context) error {
	contract := r.contract
	ch := make(chan *state.ContainedNotificationEvent)

	id, err := r.sub.ReceiveExecutionNotifications(&neorpc.NotificationFilter{Contract: &contract}, ch)
	if err != nil {
		return fmt.Errorf("subscribe to contract notifications: %w", err)
	}

	r.log.Info("listening to contract notifications")

	defer func() {
		if err := r.sub.Unsubscribe(id); err != nil {
			r.log.Warn("failed to unsubscribe from notifications", zap.Error(err))
		}
	}()

	for {
		select {
		case <-ctx.Done():
			r.log.Info("stop relaying", zap.Error(ctx.Err()))
			return nil
		case ev, ok := <-ch:
			if !ok {
				return ErrSubscriptionClosed
			}

			if err := r.handle(ctx, ev); err != nil {
				return err
			}
		}
	}
}

func (r *Relay) handle(ctx context.Context, ev *state.ContainedNotificationEvent) error {
	msg, err := decode(ev)
	if err != nil {
		return fmt.Errorf("decode %s notification from tx %s: %w", ev.Name, ev.Container.StringLE(), err)
	}

	if msg == nil {
		r.log.Debug("skip unknown notification", zap.String("name", ev.Name))
		return nil
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}

	err = r.pub.WriteMessages(ctx, kafka.Message{
		Key:   []byte(msg.Tx),
		Value: data,
	})
	if err != nil {
		return fmt.Errorf("publish %s event from tx %s: %w", msg.Event, msg.Tx, err)
	}

	r.log.Debug("event relayed", zap.String("event", msg.Event), zap.String("tx", msg.Tx))

	return nil
}

// decode turns contract notification into a Message. It returns nil message
// for events the relay is not interested in.
func decode(ev *state.ContainedNotificationEvent) (*Message, error) {
	msg := &Message{
		Tx:    ev.Container.StringLE(),
		Event: ev.Name,
	}

	switch ev.Name {
	case splitterconst.SplitEvent:
		var e splitter.SplitEvent
		if err := e.FromStackItem(ev.Item); err != nil {
			return nil, err
		}

		msg.Depositor = address.Uint160ToString(e.Depositor)
		msg.RecipientA = address.Uint160ToString(e.RecipientA)
		msg.RecipientB = address.Uint160ToString(e.RecipientB)
		msg.Amount = gasAmount(e.Amount)
	case splitterconst.WithdrawalEvent:
		var e splitter.WithdrawalEvent
		if err := e.FromStackItem(ev.Item); err != nil {
			return nil, err
		}

		msg.Account = address.Uint160ToString(e.Account)
		msg.Amount = gasAmount(e.Amount)
	case splitterconst.StateChangedEvent:
		var e splitter.StateChangedEvent
		if err := e.FromStackItem(ev.Item); err != nil {
			return nil, err
		}

		if !e.State.IsInt64() {
			return nil, fmt.Errorf("state %s is out of range", e.State)
		}

		msg.State = custody.State(e.State.Int64()).String()
	default:
		return nil, nil
	}

	return msg, nil
}

func gasAmount(v *big.Int) *decimal.Decimal {
	d := decimal.NewFromBigInt(v, -gasPrecision)
	return &d
}
