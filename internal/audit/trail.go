// Package audit records every mutation: the request history entry is
// written by the service, this package mirrors each attempt to the
// system-wide structured log and persists successful ones.
package audit

import (
	"context"
	"encoding/json"
	"time"

	"approvalflow/internal/apperror"
	"approvalflow/internal/model"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Outcomes recorded for each mutation attempt.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Writer persists audit rows; implemented by repository.AuditRepository.
type Writer interface {
	Log(ctx context.Context, entry *model.AuditLog) error
}

// Entry describes one mutation attempt.
type Entry struct {
	Actor      string
	Op         string
	Action     string
	EntityID   string
	EntityName string
	Details    map[string]interface{}
	Err        error
}

// WithErr returns a copy of e carrying the attempt's outcome.
func (e Entry) WithErr(err error) Entry {
	e.Err = err
	return e
}

type Trail struct {
	writer Writer
	logger logrus.FieldLogger
	now    func() time.Time
}

func NewTrail(writer Writer, logger logrus.FieldLogger, now func() time.Time) *Trail {
	if now == nil {
		now = time.Now
	}
	return &Trail{writer: writer, logger: logger.WithField("component", "audit"), now: now}
}

// Persist writes the audit row for a successful mutation. It is called inside
// the mutation's transaction so the row commits or rolls back with it.
func (t *Trail) Persist(ctx context.Context, e Entry) error {
	details := "{}"
	if len(e.Details) > 0 {
		encoded, err := json.Marshal(e.Details)
		if err != nil {
			return apperror.Failed(err, "failed to encode audit details")
		}
		details = string(encoded)
	}
	return t.writer.Log(ctx, &model.AuditLog{
		ID:         uuid.New(),
		ActorEmail: e.Actor,
		Action:     e.Action,
		EntityID:   e.EntityID,
		EntityName: e.EntityName,
		Details:    details,
		CreatedAt:  t.now(),
	})
}

// Record mirrors a mutation attempt to the structured log.
func (t *Trail) Record(e Entry) {
	fields := logrus.Fields{
		"actor":  e.Actor,
		"op":     e.Op,
		"action": e.Action,
		"entity": e.EntityID,
	}
	for k, v := range e.Details {
		if _, taken := fields[k]; !taken {
			fields[k] = v
		}
	}

	if e.Err == nil {
		fields["outcome"] = OutcomeSuccess
		t.logger.WithFields(fields).Info("mutation committed")
		return
	}

	fields["outcome"] = OutcomeFailure
	fields["error_kind"] = apperror.KindOf(e.Err)
	entry := t.logger.WithFields(fields).WithError(e.Err)
	switch apperror.KindOf(e.Err) {
	case apperror.KindOperationFailed, apperror.KindConfiguration:
		entry.Error("mutation failed")
	default:
		entry.Warn("mutation rejected")
	}
}
