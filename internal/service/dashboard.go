package service

import (
	"context"

	"approvalflow/internal/model"
	"approvalflow/internal/workflow"
)

// Dashboard summarizes the actor's own requests by status and the number
// of requests awaiting the actor's decision.
func (s *approvalService) Dashboard(ctx context.Context, actor string) (Dashboard, error) {
	const op = "dashboard"
	actor = model.NormalizeEmail(actor)

	counts, err := s.Statistics.CountByStatus(ctx, actor)
	if err != nil {
		return Dashboard{}, s.queryFailed(op, actor, err)
	}
	awaiting, err := s.Statistics.CountAwaiting(ctx, actor)
	if err != nil {
		return Dashboard{}, s.queryFailed(op, actor, err)
	}

	d := Dashboard{MyRequests: make(map[workflow.Status]int64, len(workflow.Statuses)), AwaitingMe: awaiting}
	for _, status := range workflow.Statuses {
		d.MyRequests[status] = counts[status]
		d.Submitted += counts[status]
	}
	return d, nil
}
