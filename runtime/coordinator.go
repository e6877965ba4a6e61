// Package runtime handles command intake, presence tracking, and event
// fan-out. It orchestrates the relay without containing transport logic.
package runtime

import (
	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/runtime/workers"
	"context"
	"fmt"
	"log/slog"
	"time"
)

var _ contract.ICoordinator = (*Coordinator)(nil)

// Coordinator owns the bounded command queue feeding the presence worker
// and ties its lifecycle to the supervisor. It mediates between the
// transport adapter and the registry; it owns neither connections nor
// rooms.
type Coordinator struct {
	log        *slog.Logger
	supervisor contract.ISupervisor
	registry   contract.IRegistry
	commands   chan domain.Command
	worker     *workers.PresenceWorker
}

func NewCoordinator(log *slog.Logger, supervisor contract.ISupervisor,
	registry contract.IRegistry, bufferSize int, sinkTimeout time.Duration) *Coordinator {
	commands := make(chan domain.Command, bufferSize)
	return &Coordinator{
		log:        log,
		supervisor: supervisor,
		registry:   registry,
		commands:   commands,
		worker:     workers.NewPresenceWorker(registry, commands, sinkTimeout, log),
	}
}

// Connect registers a fresh transport session and its delivery channel.
func (o *Coordinator) Connect(connID string, sink contract.EventSink) {
	o.registry.Connect(connID, sink)
}

// Dispatch enqueues an inbound command. Chat traffic is best-effort and
// dropped under backpressure, but a disconnect is cleanup and must not be
// lost: it blocks until the worker drains the queue down to it.
func (o *Coordinator) Dispatch(cmd domain.Command) {
	if _, ok := cmd.(domain.DisconnectCommand); ok {
		o.commands <- cmd
		return
	}
	select {
	case o.commands <- cmd:
	default:
		o.log.Warn(fmt.Sprintf("Command queue full, dropping command from %s", cmd.ConnectionID()))
	}
}

// Start places the presence worker under supervision and runs it.
func (o *Coordinator) Start(ctx context.Context) error {
	o.supervisor.Add(o.worker)

	o.log.Info("Starting coordinator and supervised presence worker")
	go o.supervisor.Run(ctx)
	return nil
}

// Stop initiates a graceful shutdown of the coordinator.
// It cancels the supervision context to signal the worker to stop.
func (o *Coordinator) Stop() {
	o.log.Info("Requesting coordinator shutdown")
	o.supervisor.Stop()
}
