package broadcast

import (
	"context"
	"fmt"
	"slices"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/mpapenbr/kartline/log"
)

const DefaultSendTimeout = 50 * time.Millisecond

type Server[T any] interface {
	Subscribe() <-chan T
	CancelSubscription(<-chan T)
	Close()
}

type (
	Option[T any] func(*server[T])
	server[T any] struct {
		name           string
		source         <-chan T
		listeners      []chan T
		addListener    chan chan T
		removeListener chan (<-chan T)
		ctx            context.Context
		cancel         context.CancelFunc
		sendTimeout    time.Duration
		mp             metric.MeterProvider
		l              *log.Logger
		numRcv         atomic.Int64
		numSnd         atomic.Int64
		numSkip        atomic.Int64
		numListener    atomic.Int64
	}
)

// WithSendTimeout sets how long a message waits for a slow listener before
// it is skipped for that listener.
func WithSendTimeout[T any](d time.Duration) Option[T] {
	return func(b *server[T]) {
		b.sendTimeout = d
	}
}

func WithMeterProvider[T any](mp metric.MeterProvider) Option[T] {
	return func(b *server[T]) {
		b.mp = mp
	}
}

func WithLogger[T any](l *log.Logger) Option[T] {
	return func(b *server[T]) {
		b.l = l
	}
}

// NewServer distributes every message read from source to all subscribers.
// The server stops when source is closed or Close is called.
func NewServer[T any](name string, source <-chan T, opts ...Option[T]) Server[T] {
	ctx, cancel := context.WithCancel(context.Background())
	b := &server[T]{
		name:           name,
		source:         source,
		addListener:    make(chan chan T),
		removeListener: make(chan (<-chan T)),
		ctx:            ctx,
		cancel:         cancel,
		sendTimeout:    DefaultSendTimeout,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.l == nil {
		b.l = log.Default().Named("broadcast")
	}
	b.l = b.l.With(log.String("name", name))
	if b.mp == nil {
		b.mp = otel.GetMeterProvider()
	}
	b.setupMetrics()
	go b.serve()
	return b
}

// Subscribe returns a channel receiving all messages published from now on.
// After Close the returned channel is already closed.
func (b *server[T]) Subscribe() <-chan T {
	ch := make(chan T)
	select {
	case b.addListener <- ch:
	case <-b.ctx.Done():
		close(ch)
	}
	return ch
}

func (b *server[T]) CancelSubscription(ch <-chan T) {
	select {
	case b.removeListener <- ch:
	case <-b.ctx.Done():
	}
}

func (b *server[T]) Close() {
	b.l.Info("closing broadcast server",
		log.Int64("rcv", b.numRcv.Load()),
		log.Int64("snd", b.numSnd.Load()),
		log.Int64("skip", b.numSkip.Load()))
	b.cancel()
}

func (b *server[T]) setupMetrics() {
	meter := b.mp.Meter(fmt.Sprintf("kartline.broadcast.%s", b.name))
	attrs := metric.WithAttributes(attribute.String("name", b.name))
	register := func(metricName, desc string, value *atomic.Int64) {
		if _, err := meter.Int64ObservableGauge(
			metricName,
			metric.WithDescription(desc),
			metric.WithUnit("{count}"),
			metric.WithInt64Callback(func(_ context.Context, o metric.Int64Observer) error {
				o.Observe(value.Load(), attrs)
				return nil
			})); err != nil {
			b.l.Error("failed to register metric",
				log.String("metric", metricName),
				log.ErrorField(err))
		}
	}
	register("kartline.broadcast.rcv", "Number of received messages", &b.numRcv)
	register("kartline.broadcast.snd", "Number of sent messages", &b.numSnd)
	register("kartline.broadcast.skip", "Number of skipped messages", &b.numSkip)
	register("kartline.broadcast.listener", "Number of listeners", &b.numListener)
}

func (b *server[T]) serve() {
	defer func() {
		b.l.Debug("closing listeners", log.Int("len", len(b.listeners)))
		for _, listener := range b.listeners {
			close(listener)
		}
		b.listeners = nil
		b.numListener.Store(0)
	}()
	for {
		select {
		case <-b.ctx.Done():
			return
		case ch := <-b.addListener:
			b.listeners = append(b.listeners, ch)
			b.numListener.Store(int64(len(b.listeners)))
		case ch := <-b.removeListener:
			idx := slices.IndexFunc(b.listeners, func(l chan T) bool { return l == ch })
			if idx < 0 {
				continue
			}
			close(b.listeners[idx])
			b.listeners = slices.Delete(b.listeners, idx, idx+1)
			b.numListener.Store(int64(len(b.listeners)))
			b.l.Debug("removed listener", log.Int("len", len(b.listeners)))
		case msg, ok := <-b.source:
			if !ok {
				b.l.Debug("source closed")
				b.cancel()
				return
			}
			b.numRcv.Add(1)
			b.send(msg)
		}
	}
}

func (b *server[T]) send(msg T) {
	for _, listener := range b.listeners {
		select {
		case listener <- msg:
			b.numSnd.Add(1)
		case <-time.After(b.sendTimeout):
			b.numSkip.Add(1)
		}
	}
}
