// Package transport defines the interface for pluggable inbound transports.
//
// Each transport (HTTP/WebSocket, gRPC) implements Transport and is handed
// the same Service at Listen time. The service doesn't care how requests
// arrive; it only works with the Service contract.
package transport

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/nadzzz/finecho/internal/finance"
	"github.com/nadzzz/finecho/internal/message"
)

// CommandProcessor handles voice commands.
type CommandProcessor interface {
	ProcessCommand(ctx context.Context, req message.CommandRequest) (*message.CommandResponse, error)
}

// Service is every operation a transport can expose.
type Service interface {
	CommandProcessor

	CreateUser(ctx context.Context, in finance.NewUser) (*finance.User, error)
	GetUser(ctx context.Context, id int64) (*finance.User, error)

	CreateTransaction(ctx context.Context, tx finance.Transaction) (*finance.Transaction, error)
	Transactions(ctx context.Context, userID int64) ([]finance.Transaction, error)
	Accounts(ctx context.Context, userID int64) ([]finance.Account, error)
	Budgets(ctx context.Context, userID int64) ([]finance.Budget, error)
	Goals(ctx context.Context, userID int64) ([]finance.Goal, error)
	AddGoalProgress(ctx context.Context, goalID int64, amount decimal.Decimal) (*finance.Goal, error)

	Summary(ctx context.Context, userID int64) (*finance.Summary, error)
	Insights(ctx context.Context, userID int64) ([]message.Insight, error)
	VoiceCommands(ctx context.Context, userID int64) ([]finance.VoiceCommand, error)
}

// Transport is the interface that every transport adapter must implement.
type Transport interface {
	// Name returns the transport identifier (e.g., "http", "grpc").
	Name() string

	// Listen starts accepting requests and hands them to svc.
	// It blocks until the context is cancelled.
	Listen(ctx context.Context, svc Service) error

	// Close gracefully shuts down the transport, draining in-flight work.
	Close() error
}
