package conversation

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

type State string

const (
	StateUnselected State = "unselected"
	StateLoading    State = "loading"
	StateLive       State = "live"
)

// Source is the part of the Synchronizer a View drives.
type Source interface {
	Fetch(ctx context.Context, conversationID, viewerID string) ([]ProjectedMessage, error)
	Subscribe(conversationID string, onChange func()) Unsubscribe
}

// ViewSink receives a View's output. Calls are serialized and made while
// the View is locked, so a sink must not call back into its View.
type ViewSink interface {
	StateChanged(state State, conversationID string)
	MessagesChanged(conversationID string, messages []ProjectedMessage)
	FetchFailed(conversationID string, err error)
}

// View is one viewer's live window onto a single selected conversation.
//
// Every selection gets a new generation. Subscription callbacks and fetch
// results carry the generation they were issued under and are dropped once
// it is stale. Within a generation a fetch result is applied only if no
// later-issued fetch has been applied already.
type View struct {
	src      Source
	viewerID string
	sink     ViewSink
	ctx      context.Context
	log      *zap.Logger

	mu          sync.Mutex
	state       State
	selection   string
	generation  uint64
	issued      uint64
	applied     uint64
	unsubscribe Unsubscribe
	closed      bool
	wg          sync.WaitGroup
}

func NewView(ctx context.Context, src Source, viewerID string, sink ViewSink, log *zap.Logger) *View {
	return &View{
		src:      src,
		viewerID: viewerID,
		sink:     sink,
		ctx:      ctx,
		log:      log,
		state:    StateUnselected,
	}
}

func (v *View) State() (State, string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state, v.selection
}

// Select switches to conversationID. The previous subscription is severed
// before the new one is made. Selecting the current conversation again
// only refreshes it.
func (v *View) Select(conversationID string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return
	}

	if conversationID == v.selection && v.state != StateUnselected {
		v.fetchLocked(v.generation)
		return
	}

	v.teardownLocked()
	v.generation++
	gen := v.generation
	v.selection = conversationID
	v.setStateLocked(StateLoading)

	v.unsubscribe = v.src.Subscribe(conversationID, func() { v.onChange(gen) })
	v.fetchLocked(gen)
}

// Refresh re-reads the selected conversation.
func (v *View) Refresh() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed || v.state == StateUnselected {
		return
	}
	v.fetchLocked(v.generation)
}

// Clear drops the selection and returns to Unselected.
func (v *View) Clear() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed || v.state == StateUnselected {
		return
	}
	v.teardownLocked()
	v.generation++
	v.selection = ""
	v.setStateLocked(StateUnselected)
}

// Close tears the View down and waits for in-flight fetches, whose results
// are discarded.
func (v *View) Close() {
	v.mu.Lock()
	if !v.closed {
		v.teardownLocked()
		v.generation++
		v.closed = true
	}
	v.mu.Unlock()

	v.wg.Wait()
}

func (v *View) onChange(gen uint64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed || gen != v.generation {
		return
	}
	v.fetchLocked(gen)
}

func (v *View) fetchLocked(gen uint64) {
	v.issued++
	seq := v.issued
	conversationID := v.selection

	v.wg.Add(1)
	go func() {
		defer v.wg.Done()
		messages, err := v.src.Fetch(v.ctx, conversationID, v.viewerID)
		v.apply(gen, seq, conversationID, messages, err)
	}()
}

func (v *View) apply(gen, seq uint64, conversationID string, messages []ProjectedMessage, err error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.closed || gen != v.generation {
		v.log.Debug("discarding stale fetch", zap.String("conversation_id", conversationID))
		return
	}
	if seq <= v.applied {
		return
	}
	v.applied = seq

	if err != nil {
		v.sink.FetchFailed(conversationID, err)
		// a failed refresh leaves what the viewer already has on screen
		if v.state == StateLive {
			return
		}
	}

	v.sink.MessagesChanged(conversationID, messages)
	if v.state == StateLoading {
		v.setStateLocked(StateLive)
	}
}

func (v *View) teardownLocked() {
	if v.unsubscribe != nil {
		v.unsubscribe()
		v.unsubscribe = nil
	}
}

func (v *View) setStateLocked(state State) {
	v.state = state
	v.sink.StateChanged(state, v.selection)
}
