package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"

	apperrors "frontdesk/pkg/errors"
)

type TransactionFunc func(ctx mongo.SessionContext) error

type TransactionManager interface {
	ExecuteTransaction(ctx context.Context, fn TransactionFunc) error
	// Transactional is false against a standalone mongod, where fn runs in a
	// plain session and callers must undo partial writes themselves.
	Transactional() bool
}

type mongoTransactionManager struct {
	client  *mongo.Client
	enabled bool
}

func NewTransactionManager(client *mongo.Client, enabled bool) TransactionManager {
	return &mongoTransactionManager{
		client:  client,
		enabled: enabled,
	}
}

func (m *mongoTransactionManager) Transactional() bool {
	return m.enabled
}

func (m *mongoTransactionManager) ExecuteTransaction(ctx context.Context, fn TransactionFunc) error {
	session, err := m.client.StartSession()
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer session.EndSession(ctx)

	if !m.enabled {
		return fn(mongo.NewSessionContext(ctx, session))
	}

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (any, error) {
		return nil, fn(sessCtx)
	})

	if err != nil {
		if apperrors.IsAppError(err) {
			return err
		}
		return fmt.Errorf("transaction failed: %w", err)
	}

	return nil
}
