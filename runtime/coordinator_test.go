package runtime

import (
	"chat-relay/domain"
	"chat-relay/domain/event"
	"chat-relay/runtime/workers"
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

type queueSink struct {
	mu     sync.Mutex
	events []event.DomainEvent
}

func (s *queueSink) Consume(_ context.Context, e event.DomainEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
	return nil
}

func (s *queueSink) Events() []event.DomainEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]event.DomainEvent(nil), s.events...)
}

func startCoordinator(t *testing.T, bufferSize int) *Coordinator {
	t.Helper()
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	sup := workers.NewSupervisor(log, 50*time.Millisecond)
	coordinator := NewCoordinator(log, sup, NewRegistry(), bufferSize, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	require.NoError(t, coordinator.Start(ctx))
	return coordinator
}

func TestCoordinator_Processes_Commands_In_Order(t *testing.T) {
	req := require.New(t)
	coordinator := startCoordinator(t, 64)

	sinkA := &queueSink{}
	sinkB := &queueSink{}
	coordinator.Connect("A", sinkA)
	coordinator.Connect("B", sinkB)

	// When a full session flows through the queue
	coordinator.Dispatch(domain.JoinCommand{Conn: "A", Username: "alice", Room: "general"})
	coordinator.Dispatch(domain.JoinCommand{Conn: "B", Username: "bob", Room: "general"})
	coordinator.Dispatch(domain.PostMessageCommand{Conn: "A", Username: "alice", Room: "general", Content: "hi"})
	coordinator.Dispatch(domain.DisconnectCommand{Conn: "B"})

	// Then alice eventually observes the whole sequence, in order
	req.Eventually(func() bool {
		return len(sinkA.Events()) == 4
	}, 2*time.Second, 10*time.Millisecond)

	events := sinkA.Events()
	req.IsType(event.UserJoined{}, events[0])
	req.IsType(event.UserJoined{}, events[1])
	req.IsType(event.MessagePosted{}, events[2])
	req.IsType(event.UserLeft{}, events[3])
}

func TestCoordinator_Dispatch_Drops_Chat_Traffic_When_Queue_Is_Full(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	sup := workers.NewSupervisor(log, 50*time.Millisecond)
	// Coordinator is not started: nothing drains the queue
	coordinator := NewCoordinator(log, sup, NewRegistry(), 1, time.Second)

	coordinator.Dispatch(domain.PostMessageCommand{Conn: "A", Username: "alice", Room: "general", Content: "1"})

	// When the queue is already full, dispatch must not block
	done := make(chan struct{})
	go func() {
		coordinator.Dispatch(domain.PostMessageCommand{Conn: "A", Username: "alice", Room: "general", Content: "2"})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		req.Fail("Dispatch blocked on a full queue")
	}
}

func TestCoordinator_Disconnect_Survives_Backpressure(t *testing.T) {
	req := require.New(t)
	coordinator := startCoordinator(t, 4)

	sinkA := &queueSink{}
	coordinator.Connect("A", sinkA)
	coordinator.Dispatch(domain.JoinCommand{Conn: "A", Username: "alice", Room: "general"})

	// When chat traffic floods the queue around the disconnect
	for i := 0; i < 64; i++ {
		coordinator.Dispatch(domain.PostMessageCommand{Conn: "A", Username: "alice", Room: "general", Content: "spam"})
	}
	coordinator.Dispatch(domain.DisconnectCommand{Conn: "A"})

	// Then cleanup still runs: the session is gone and the room deleted
	req.Eventually(func() bool {
		return !coordinator.registry.HasSession("A") && coordinator.registry.Members("general") == nil
	}, 2*time.Second, 10*time.Millisecond)
}
