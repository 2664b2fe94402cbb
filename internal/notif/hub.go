package notif

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"claridx/internal/common"
	"claridx/internal/config"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Op string

const (
	OpInsert Op = "INSERT"
	OpUpdate Op = "UPDATE"
	OpDelete Op = "DELETE"
)

// Change is a row-level event. Row carries only the key columns the table
// is watched on; it is empty when the write did not identify its rows.
type Change struct {
	Table  string            `json:"table"`
	Op     Op                `json:"op"`
	Row    map[string]string `json:"row,omitempty"`
	Origin string            `json:"origin,omitempty"`
}

// Filter selects changes on Table, optionally where Column equals Value.
type Filter struct {
	Table  string
	Column string
	Value  string
}

func ColumnEquals(table, column, value string) Filter {
	return Filter{Table: table, Column: column, Value: value}
}

// Matches errs on the side of delivery: a change whose row does not carry
// the filtered column matches every filter on its table.
func (f Filter) Matches(c Change) bool {
	if f.Table != "" && f.Table != c.Table {
		return false
	}
	if f.Column == "" {
		return true
	}
	v, ok := c.Row[f.Column]
	if !ok {
		return true
	}
	return v == f.Value
}

type Handler func(Change)

type Subscription interface {
	Unsubscribe()
}

// Relay carries changes between hub instances.
type Relay interface {
	Forward(ctx context.Context, change Change) error
	Listen(ctx context.Context, deliver func(Change)) error
	Close() error
}

var ErrHubClosed = errors.New("change hub is shut down")

type observer struct {
	id      uint64
	filter  Filter
	handler Handler
	active  atomic.Bool
}

// Hub fans changes out to subscribers from a fixed worker pool.
type Hub struct {
	observers    map[uint64]*observer
	eventChannel chan Change
	workerPool   int
	nextID       uint64
	instanceID   string
	relay        Relay
	closed       bool
	log          *zap.Logger
	ctx          context.Context
	cancel       context.CancelFunc
	mu           sync.RWMutex
	wg           sync.WaitGroup
}

func NewHub(cfg config.NotificationConfig, log *zap.Logger) *Hub {
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	buffer := cfg.ChannelBufferSize
	if buffer <= 0 {
		buffer = 1000
	}

	ctx, cancel := context.WithCancel(context.Background())
	h := &Hub{
		observers:    make(map[uint64]*observer),
		eventChannel: make(chan Change, buffer),
		workerPool:   workers,
		instanceID:   uuid.NewString(),
		log:          log.Named("notif"),
		ctx:          ctx,
		cancel:       cancel,
	}

	for i := 0; i < workers; i++ {
		h.wg.Add(1)
		go h.processEvents()
	}

	return h
}

func (h *Hub) InstanceID() string {
	return h.instanceID
}

func (h *Hub) Subscribe(filter Filter, handler Handler) (Subscription, error) {
	if handler == nil {
		return nil, errors.New("nil change handler")
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, ErrHubClosed
	}

	h.nextID++
	obs := &observer{id: h.nextID, filter: filter, handler: handler}
	obs.active.Store(true)
	h.observers[obs.id] = obs

	h.log.Debug("observer subscribed",
		zap.Uint64("id", obs.id),
		zap.String("table", filter.Table),
		zap.String("column", filter.Column),
		zap.String("value", filter.Value),
	)
	return &subscription{hub: h, obs: obs}, nil
}

func (h *Hub) unsubscribe(obs *observer) {
	obs.active.Store(false)

	h.mu.Lock()
	delete(h.observers, obs.id)
	h.mu.Unlock()

	h.log.Debug("observer unsubscribed", zap.Uint64("id", obs.id))
}

// Publish queues a change for local subscribers and forwards changes that
// originated here to the relay. It never blocks on slow subscribers.
func (h *Hub) Publish(ctx context.Context, change Change) {
	if change.Origin == "" {
		change.Origin = h.instanceID
	}
	h.enqueue(change)

	h.mu.RLock()
	relay := h.relay
	h.mu.RUnlock()

	if relay != nil && change.Origin == h.instanceID {
		if err := relay.Forward(ctx, change); err != nil {
			h.log.Warn("relay forward failed", zap.String("table", change.Table), zap.Error(err))
		}
	}
}

// AttachRelay starts receiving changes published by other instances. On
// error the hub keeps working locally.
func (h *Hub) AttachRelay(ctx context.Context, relay Relay) error {
	err := relay.Listen(ctx, func(change Change) {
		if change.Origin == h.instanceID {
			return
		}
		h.enqueue(change)
	})
	if err != nil {
		return err
	}

	h.mu.Lock()
	h.relay = relay
	h.mu.Unlock()
	return nil
}

func (h *Hub) enqueue(change Change) {
	select {
	case <-h.ctx.Done():
		return
	default:
	}

	select {
	case h.eventChannel <- change:
	case <-h.ctx.Done():
	default:
		h.log.Warn("change channel full, dropping event",
			zap.String("table", change.Table),
			zap.String("op", string(change.Op)),
		)
	}
}

func (h *Hub) processEvents() {
	defer h.wg.Done()

	for {
		select {
		case change := <-h.eventChannel:
			h.notify(change)
		case <-h.ctx.Done():
			h.drain()
			return
		}
	}
}

// drain delivers whatever was queued before Shutdown cancelled the hub.
func (h *Hub) drain() {
	for {
		select {
		case change := <-h.eventChannel:
			h.notify(change)
		default:
			return
		}
	}
}

func (h *Hub) notify(change Change) {
	h.mu.RLock()
	matched := make([]*observer, 0, len(h.observers))
	for _, obs := range h.observers {
		if obs.filter.Matches(change) {
			matched = append(matched, obs)
		}
	}
	h.mu.RUnlock()

	for _, obs := range matched {
		if !obs.active.Load() {
			continue
		}
		h.invoke(obs, change)
	}
}

func (h *Hub) invoke(obs *observer, change Change) {
	defer common.RecoverAndLog(h.log, "change-handler")
	obs.handler(change)
}

// Shutdown stops intake and returns once the changes already queued have
// been delivered and the relay is closed.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	relay := h.relay
	h.mu.Unlock()

	h.cancel()
	h.wg.Wait()

	if relay != nil {
		if err := relay.Close(); err != nil {
			h.log.Warn("relay close failed", zap.Error(err))
		}
	}
	h.log.Info("change hub shutdown complete")
}

type subscription struct {
	once sync.Once
	hub  *Hub
	obs  *observer
}

func (s *subscription) Unsubscribe() {
	s.once.Do(func() {
		s.hub.unsubscribe(s.obs)
	})
}
