package hub

import (
	"encoding/json"
	"errors"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"sagetracker/backend/internal/events"
)

type sentFrame struct {
	connID string
	frame  []byte
}

// fakeTransport records every Send and fails for the ids in failFor.
type fakeTransport struct {
	mu      sync.Mutex
	sent    []sentFrame
	failFor map[string]bool
}

func (f *fakeTransport) Send(connID string, frame []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentFrame{connID: connID, frame: frame})
	if f.failFor[connID] {
		return errors.New("write: broken pipe")
	}
	return nil
}

func (f *fakeTransport) connIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := make([]string, 0, len(f.sent))
	for _, s := range f.sent {
		ids = append(ids, s.connID)
	}
	sort.Strings(ids)
	return ids
}

type fakeRecorder struct {
	mu       sync.Mutex
	ok, fail int
	dropped  int
}

func (r *fakeRecorder) DeliveryAttempted(_ events.Name, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ok {
		r.ok++
	} else {
		r.fail++
	}
}

func (r *fakeRecorder) DispatchDropped(events.Name) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dropped++
}

func TestDispatcher_OfflineUserIsNoop(t *testing.T) {
	transport := &fakeTransport{}
	d := NewDispatcher(NewRegistry(), transport, nil, zap.NewNop())

	assert.NotPanics(t, func() {
		d.EmitToUser("alice", events.FriendRemoved{ByUserID: "bob"})
	})
	assert.Empty(t, transport.sent)
}

func TestDispatcher_DeliversOncePerConnection(t *testing.T) {
	registry := NewRegistry()
	registry.Register("alice", "a1")
	registry.Register("alice", "a2")
	registry.Register("alice", "a3")
	transport := &fakeTransport{}
	recorder := &fakeRecorder{}
	d := NewDispatcher(registry, transport, recorder, zap.NewNop())

	d.EmitToUser("alice", events.FriendAdded{FriendshipID: "f1", FriendID: "bob"})

	assert.Equal(t, []string{"a1", "a2", "a3"}, transport.connIDs())
	assert.Equal(t, 3, recorder.ok)

	var env struct {
		Event string          `json:"event"`
		Data  json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(transport.sent[0].frame, &env))
	assert.Equal(t, "friend_added", env.Event)
	assert.JSONEq(t, `{"friendshipId":"f1","friendId":"bob"}`, string(env.Data))
}

func TestDispatcher_FailureOnOneConnectionDoesNotStopOthers(t *testing.T) {
	registry := NewRegistry()
	registry.Register("alice", "a1")
	registry.Register("alice", "a2")
	registry.Register("alice", "a3")
	transport := &fakeTransport{failFor: map[string]bool{"a2": true}}
	recorder := &fakeRecorder{}
	d := NewDispatcher(registry, transport, recorder, zap.NewNop())

	d.EmitToUser("alice", events.FriendRemoved{ByUserID: "bob"})

	assert.Equal(t, []string{"a1", "a2", "a3"}, transport.connIDs())
	assert.Equal(t, 2, recorder.ok)
	assert.Equal(t, 1, recorder.fail)
}

func TestDispatcher_OnlyTargetUserReceives(t *testing.T) {
	registry := NewRegistry()
	registry.Register("A", "connA1")
	registry.Register("A", "connA2")
	registry.Register("B", "connB1")
	transport := &fakeTransport{}
	d := NewDispatcher(registry, transport, nil, zap.NewNop())

	d.EmitToUser("A", events.FriendAdded{FriendshipID: "f1", FriendID: "C"})

	assert.Equal(t, []string{"connA1", "connA2"}, transport.connIDs())
}
