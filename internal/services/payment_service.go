package services

import (
	"context"
	"fmt"
	"log/slog"

	"domus/internal/amqp"
	"domus/internal/core"
	"domus/internal/events"
	applog "domus/internal/log"
	"domus/internal/storage"
)

// PaymentService orchestrates payment writes across SQLite, the change
// bus and the optional AMQP sync queue.
type PaymentService struct {
	storage    *storage.SQLiteRepository
	bus        *events.Bus
	amqpClient *amqp.Client
	logs       *applog.StructuredLogger
}

func NewPaymentService(storage *storage.SQLiteRepository, bus *events.Bus, amqpClient *amqp.Client) *PaymentService {
	return &PaymentService{
		storage:    storage,
		bus:        bus,
		amqpClient: amqpClient,
		logs:       applog.NewStructuredLogger(applog.New(applog.Config{Component: applog.ComponentPayment})),
	}
}

// RecordPayment validates and saves a payment, then publishes the change
// and a sync message. Publishing failures never fail the request.
func (s *PaymentService) RecordPayment(ctx context.Context, p core.Payment) (int64, error) {
	if err := p.Validate(); err != nil {
		return 0, err
	}

	if _, err := s.storage.GetTenant(ctx, p.TenantID); err != nil {
		return 0, fmt.Errorf("look up tenant %d: %w", p.TenantID, err)
	}

	id, err := s.storage.CreatePayment(ctx, p)
	if err != nil {
		return 0, fmt.Errorf("save payment: %w", err)
	}

	s.publish(events.EntityPayment, events.OpCreate, id)
	s.logs.LogPaymentRecorded(ctx, id, p.TenantID, p.Month.String(), p.Amount.Cents)

	if err := s.publishSyncMessage(ctx, id, p.TenantID); err != nil {
		slog.ErrorContext(ctx, "Failed to publish sync message",
			"payment_id", id, "error", err)
		// Don't fail the request, the payment is saved locally.
	}

	return id, nil
}

func (s *PaymentService) UpdatePayment(ctx context.Context, id int64, u storage.PaymentUpdate) error {
	if u.Month != nil && u.Month.IsZero() {
		return core.ErrInvalidDate
	}
	if u.AmountCents != nil && *u.AmountCents < 0 {
		return core.ErrInvalidAmount
	}
	if u.TenantID != nil {
		if _, err := s.storage.GetTenant(ctx, *u.TenantID); err != nil {
			return fmt.Errorf("look up tenant %d: %w", *u.TenantID, err)
		}
	}

	if err := s.storage.UpdatePayment(ctx, id, u); err != nil {
		return fmt.Errorf("update payment: %w", err)
	}

	s.publish(events.EntityPayment, events.OpUpdate, id)
	return nil
}

func (s *PaymentService) DeletePayment(ctx context.Context, id int64) error {
	if err := s.storage.DeletePayment(ctx, id); err != nil {
		return fmt.Errorf("delete payment: %w", err)
	}

	s.publish(events.EntityPayment, events.OpDelete, id)
	return nil
}

func (s *PaymentService) publish(entity events.Entity, op events.Op, id int64) {
	if s.bus != nil {
		s.bus.Publish(entity, op, id)
	}
}

func (s *PaymentService) publishSyncMessage(ctx context.Context, paymentID, tenantID int64) error {
	if s.amqpClient == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping sync message")
		return nil
	}

	return s.amqpClient.PublishPaymentSync(ctx, paymentID, tenantID)
}

// Close closes both storage and AMQP connections.
func (s *PaymentService) Close() error {
	var errs []error

	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if s.amqpClient != nil {
		if err := s.amqpClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close payment service: %v", errs)
	}

	return nil
}
