package runtime

import (
	"github.com/pkg/errors"

	"github.com/p-org/psym/pkg/guard"
	vs "github.com/p-org/psym/pkg/valuesummary"
	"github.com/p-org/psym/pkg/valuesummary/domain"
)

const (
	senderName   = "Sender"
	receiverName = "Receiver"
)

// Broadcast is a reference program: every sender sends a fixed number of
// messages to its receiver, sender i sending to receiver i modulo the number
// of receivers. Counters are value summaries, so one symbolic step advances
// every sender the step's choice may hold.
type Broadcast struct {
	senders   []*Machine
	receivers []*Machine
	index     map[*Machine]int
	messages  int
	failAt    int

	remaining []*vs.PrimitiveVS[int]
	received  []*vs.PrimitiveVS[int]
}

type BroadcastOption func(*Broadcast)

// WithFailAt makes a receiver assert that it never holds n messages.
func WithFailAt(n int) BroadcastOption {
	return func(b *Broadcast) {
		b.failAt = n
	}
}

// NewBroadcast panics unless senders, receivers and messages are positive.
func NewBroadcast(senders, receivers, messages int, opts ...BroadcastOption) *Broadcast {
	if senders < 1 || receivers < 1 || messages < 1 {
		panic(errors.Errorf("invalid broadcast: %d senders, %d receivers, %d messages", senders, receivers, messages))
	}
	b := &Broadcast{
		index:    make(map[*Machine]int),
		messages: messages,
	}
	for i := 0; i < senders; i++ {
		m := NewMachine(senderName, i)
		b.senders = append(b.senders, m)
		b.index[m] = i
	}
	for i := 0; i < receivers; i++ {
		b.receivers = append(b.receivers, NewMachine(receiverName, i))
	}
	for _, opt := range opts {
		opt(b)
	}
	b.Reset()
	return b
}

func (b *Broadcast) Name() string {
	return "broadcast"
}

func (b *Broadcast) Senders() []*Machine {
	return b.senders
}

func (b *Broadcast) Reset() {
	b.remaining = make([]*vs.PrimitiveVS[int], len(b.senders))
	for i := range b.remaining {
		b.remaining[i] = vs.New(b.messages)
	}
	b.received = make([]*vs.PrimitiveVS[int], len(b.receivers))
	for i := range b.received {
		b.received[i] = vs.New(0)
	}
}

func (b *Broadcast) target(sender int) int {
	return sender % len(b.receivers)
}

func (b *Broadcast) SenderChoices() []*vs.PrimitiveVS[*Machine] {
	var res []*vs.PrimitiveVS[*Machine]
	for i, m := range b.senders {
		enabled := vs.BoolGuard(vs.Apply(b.remaining[i], func(n int) bool { return n > 0 }))
		if enabled.IsFalse() {
			continue
		}
		res = append(res, vs.New(m).Restrict(enabled))
	}
	return res
}

func (b *Broadcast) Step(sender *vs.PrimitiveVS[*Machine]) error {
	for _, gv := range sender.GuardedValues() {
		m, err := domain.ToSingle(gv.Value)
		if err != nil {
			return errors.Wrapf(err, "sender %s", gv.Value)
		}
		i, ok := b.index[m]
		if !ok {
			return errors.Errorf("%s is not a sender of %s", m, b.Name())
		}
		if err := b.send(i, gv.Guard); err != nil {
			return err
		}
	}
	return nil
}

func (b *Broadcast) send(i int, g guard.Guard) error {
	b.remaining[i] = b.remaining[i].UpdateUnderGuard(g, vs.Apply(b.remaining[i].Restrict(g), dec))

	r := b.target(i)
	b.received[r] = b.received[r].UpdateUnderGuard(g, vs.Apply(b.received[r].Restrict(g), inc))
	if b.failAt > 0 && b.received[r].HasValue(b.failAt) {
		return errors.Wrapf(ErrSafetyViolation, "%s may hold %d messages", b.receivers[r], b.failAt)
	}
	return nil
}

// Dependent holds for two senders that share a receiver.
func (b *Broadcast) Dependent(x, y *Machine) bool {
	i, ok := b.index[x]
	if !ok {
		return true
	}
	j, ok := b.index[y]
	if !ok {
		return true
	}
	return b.target(i) == b.target(j)
}

// Received returns the message count of receiver r.
func (b *Broadcast) Received(r int) *vs.PrimitiveVS[int] {
	return b.received[r]
}

func inc(n int) int { return n + 1 }

func dec(n int) int { return n - 1 }
