package relay

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/fr-yash/CoBuilderr/internal/extract"
	"github.com/fr-yash/CoBuilderr/internal/ident"
	"github.com/fr-yash/CoBuilderr/internal/metrics"
	"github.com/fr-yash/CoBuilderr/internal/models"
)

// TriggerToken marks a chat message as an AI request.
const TriggerToken = "@ai"

// apologyText is broadcast in place of a response when the backend fails.
const apologyText = "Sorry, I encountered an error while processing your request."

// Generator produces a normalized result for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (extract.Result, error)
}

// MessageCache records broadcast envelopes for the history endpoint.
type MessageCache interface {
	AddMessage(ctx context.Context, roomID string, env models.MessageEnvelope) error
}

// Relay implements the per-message dispatch state machine: broadcast the
// raw envelope first, then run the AI branch out of band when the text
// carries the trigger token.
type Relay struct {
	registry *Registry
	gen      Generator
	cache    MessageCache // optional
	logger   zerolog.Logger

	// baseCtx outlives individual connections: a sender disconnecting
	// must not cancel its in-flight generation.
	baseCtx context.Context
	wg      sync.WaitGroup
}

// New creates a relay. ctx bounds the lifetime of all generation work and
// should span the whole process.
func New(ctx context.Context, registry *Registry, gen Generator, cache MessageCache, logger zerolog.Logger) *Relay {
	return &Relay{
		registry: registry,
		gen:      gen,
		cache:    cache,
		logger:   logger.With().Str("component", "relay").Logger(),
		baseCtx:  ctx,
	}
}

// HandleMessage relays env to the room's members and, when triggered,
// spawns the generation branch. It never blocks on the backend: the caller
// (a connection read loop) returns to reading immediately.
func (rl *Relay) HandleMessage(roomID string, env models.MessageEnvelope) {
	// The human message always reaches the room before any AI reply
	// derived from it.
	rl.registry.Broadcast(roomID, env)
	rl.cacheEnvelope(roomID, env)
	metrics.MessagesRelayed.WithLabelValues("user").Inc()

	if !strings.Contains(env.Text, TriggerToken) {
		return
	}

	prompt := promptFromText(env.Text)
	if prompt == "" {
		// Trigger with nothing to ask: no backend call, no AI envelope.
		rl.logger.Debug().Str("room", roomID).Msg("trigger without prompt ignored")
		return
	}

	rl.wg.Add(1)
	go func() {
		defer rl.wg.Done()
		rl.runGeneration(roomID, prompt)
	}()
}

// promptFromText strips the first trigger occurrence and trims the rest.
func promptFromText(text string) string {
	return strings.TrimSpace(strings.Replace(text, TriggerToken, "", 1))
}

func (rl *Relay) runGeneration(roomID, prompt string) {
	res, err := rl.gen.Generate(rl.baseCtx, prompt)
	if err != nil {
		rl.logger.Warn().Err(err).Str("room", roomID).Msg("generation failed, sending apology")
		rl.broadcastAI(roomID, models.MessageEnvelope{
			ID:        ident.NewMessageID(),
			Text:      apologyText,
			Sender:    models.SenderAI,
			Timestamp: ident.Stamp(time.Now()),
		})
		return
	}

	rl.broadcastAI(roomID, models.MessageEnvelope{
		ID:           ident.NewMessageID(),
		Text:         res.Text,
		Sender:       models.SenderAI,
		Timestamp:    ident.Stamp(time.Now()),
		FileTree:     res.FileTree,
		BuildCommand: res.BuildCommand,
		StartCommand: res.StartCommand,
	})
}

func (rl *Relay) broadcastAI(roomID string, env models.MessageEnvelope) {
	rl.registry.Broadcast(roomID, env)
	rl.cacheEnvelope(roomID, env)
	metrics.MessagesRelayed.WithLabelValues("ai").Inc()
}

func (rl *Relay) cacheEnvelope(roomID string, env models.MessageEnvelope) {
	if rl.cache == nil {
		return
	}
	if err := rl.cache.AddMessage(rl.baseCtx, roomID, env); err != nil {
		rl.logger.Debug().Err(err).Str("room", roomID).Msg("message cache write failed")
	}
}

// Wait blocks until all in-flight generation work has completed. Called
// during shutdown after the listener has stopped.
func (rl *Relay) Wait() {
	rl.wg.Wait()
}
