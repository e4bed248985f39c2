// Package di assembles the application from configuration.
package di

import (
	"context"

	"versegraph/application/commands/bus"
	"versegraph/application/ports"
	querybus "versegraph/application/queries/bus"
	"versegraph/application/services"
	"versegraph/infrastructure/config"
	"versegraph/pkg/auth"
	"versegraph/pkg/observability"

	"go.uber.org/zap"
)

// Storage groups the repositories of the selected driver
type Storage struct {
	Nodes  ports.NodeRepository
	Edges  ports.EdgeRepository
	Notes  ports.NoteRepository
	Locker ports.UserLocker

	// Ready reports whether the backing store answers
	Ready func(ctx context.Context) error
}

// NoteSubscriptions counts the in-process note.saved handlers. Only the
// sqlite driver has any; with EventBridge the generate-graph lambda
// consumes the events instead.
type NoteSubscriptions int

// Container holds all application dependencies
type Container struct {
	Config         *config.Config
	Logger         *zap.Logger
	Storage        *Storage
	Publisher      ports.EventPublisher
	Cache          ports.Cache
	Metrics        *observability.Metrics
	Generator      *services.GraphGenerator
	Assembler      *services.GraphAssembler
	CommandBus     *bus.CommandBus
	QueryBus       *querybus.QueryBus
	TokenValidator *auth.JWTValidator
	RateLimiter    auth.RateLimiter
	Subscriptions  NoteSubscriptions
}
