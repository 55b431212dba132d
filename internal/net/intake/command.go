package intake

import (
	"time"

	"gridchase/internal/grid"
	"gridchase/internal/net/proto"
	"gridchase/internal/sim"
)

// Reject reasons returned when a client message never reaches the
// simulation queue.
const (
	RejectInvalidCommand = "invalid_command"
	RejectBadDirection   = "bad_direction"
	RejectUnknownClient  = "unknown_client"
	RejectNotSeated      = "not_seated"
)

// CommandQueue accepts validated commands for processing on the next tick.
type CommandQueue interface {
	Enqueue(cmd sim.Command) (bool, string)
}

type CommandContext struct {
	Queue     CommandQueue
	HasClient func(string) bool
	Seat      func(string) (string, bool)
	Tick      func() uint64
	Now       func() time.Time
}

func StageClientCommand(ctx CommandContext, clientID string, msg proto.ClientMessage) (sim.Command, bool, string) {
	var zero sim.Command

	command, ok := proto.ClientCommand(msg)
	if !ok {
		return zero, false, RejectInvalidCommand
	}

	switch command.Type {
	case sim.CommandSteer:
		if command.Steer == nil {
			return zero, false, RejectInvalidCommand
		}
		dir, ok := grid.ParseDirection(command.Steer.Direction)
		if !ok || dir == grid.DirNone {
			return zero, false, RejectBadDirection
		}
	case sim.CommandReset:
	default:
		return zero, false, RejectInvalidCommand
	}

	if ctx.HasClient != nil && !ctx.HasClient(clientID) {
		return zero, false, RejectUnknownClient
	}

	command.ActorID = clientID
	if ctx.Seat != nil {
		actorID, seated := ctx.Seat(clientID)
		if !seated {
			return zero, false, RejectNotSeated
		}
		command.ActorID = actorID
	}

	if ctx.Tick != nil {
		command.OriginTick = ctx.Tick()
	}
	if ctx.Now != nil {
		command.IssuedAt = ctx.Now()
	} else {
		command.IssuedAt = time.Now()
	}

	if ctx.Queue == nil {
		return zero, false, sim.CommandRejectQueueFull
	}
	if ok, reason := ctx.Queue.Enqueue(command); !ok {
		return zero, false, reason
	}

	return command, true, ""
}
