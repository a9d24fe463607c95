package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"approvalflow/internal/apperror"
	"approvalflow/internal/audit"
	"approvalflow/internal/clock"
	"approvalflow/internal/concurrency"
	"approvalflow/internal/idgen"
	"approvalflow/internal/model"
	"approvalflow/internal/notify"
	"approvalflow/internal/repository"
	"approvalflow/internal/routing"
	"approvalflow/internal/workflow"
	"approvalflow/pkg/pagination"

	"github.com/sirupsen/logrus"
)

// --- DTOs ---

type SubmitRequest struct {
	FormType       string          `json:"form_type" validate:"required"`
	RequesterName  string          `json:"requester_name" validate:"required"`
	RequesterEmail string          `json:"requester_email" validate:"required,email"`
	Department     string          `json:"department" validate:"required"`
	SubDepartment  string          `json:"sub_department"`
	Details        json.RawMessage `json:"details,omitempty" swaggertype:"object"`
}

type ProcessRequest struct {
	RequestID         string          `json:"request_id" validate:"required"`
	Action            string          `json:"action" validate:"required"`
	Notes             string          `json:"notes"`
	NextApproverEmail string          `json:"next_approver_email"`
	ITReviewData      json.RawMessage `json:"it_review_data,omitempty" swaggertype:"object"`
	Actor             string          `json:"-"`
}

// RequestView is a request as shown to one user.
type RequestView struct {
	model.Request
	// CanAct is true when the viewer is the current approver.
	CanAct bool `json:"can_act"`
}

type Page struct {
	Requests []RequestView `json:"requests"`
	Total    int64         `json:"total"`
	Page     int           `json:"page"`
	PageSize int           `json:"page_size"`
}

type Dashboard struct {
	MyRequests map[workflow.Status]int64 `json:"my_requests"`
	Submitted  int64                     `json:"submitted"`
	AwaitingMe int64                     `json:"awaiting_me"`
}

// --- Interface ---

type ApprovalService interface {
	Submit(ctx context.Context, in SubmitRequest) Result
	ProcessApproval(ctx context.Context, in ProcessRequest) Result
	ListApprovals(ctx context.Context, actor string) ([]RequestView, error)
	ListMyRequests(ctx context.Context, actor string, page, pageSize int) (Page, error)
	GetRequest(ctx context.Context, id, actor string) (RequestView, error)
	Dashboard(ctx context.Context, actor string) (Dashboard, error)
}

// ApprovalDeps are the collaborators of the approval service.
type ApprovalDeps struct {
	Requests   repository.RequestRepository
	Statistics repository.StatisticsRepository
	Tx         repository.TransactionManager
	Resolver   *routing.Resolver
	Policy     FormPolicy
	Guard      concurrency.Guard
	Auth       *Authorizer
	Trail      *audit.Trail
	Notifier   notify.Notifier
	Renderer   notify.DocumentRenderer
	Clock      clock.Clock
	IDs        idgen.Generator
	Logger     logrus.FieldLogger
}

type approvalService struct {
	ApprovalDeps
}

func NewApprovalService(deps ApprovalDeps) ApprovalService {
	if deps.Clock == nil {
		deps.Clock = clock.System
	}
	if deps.IDs == nil {
		deps.IDs = idgen.New(deps.Clock)
	}
	if deps.Logger == nil {
		deps.Logger = logrus.StandardLogger()
	}
	deps.Logger = deps.Logger.WithField("component", "approvals")
	return &approvalService{ApprovalDeps: deps}
}

// --- Mutations ---

func (s *approvalService) Submit(ctx context.Context, in SubmitRequest) Result {
	const op = "submit"
	actor := model.NormalizeEmail(in.RequesterEmail)
	entry := audit.Entry{Actor: actor, Op: op, Action: model.ActionSubmitRequest, EntityName: strings.TrimSpace(in.FormType)}

	req, err := s.submit(ctx, in, &entry)
	s.Trail.Record(entry.WithErr(err))
	if err != nil {
		return observed(op, failed(err))
	}

	transitions.WithLabelValues("submit", string(req.Status)).Inc()
	s.dispatch(ctx, req, workflow.EffectNotifyApprover, actor, "")
	return observed(op, succeeded("Request submitted", req.ID))
}

func (s *approvalService) submit(ctx context.Context, in SubmitRequest, entry *audit.Entry) (*model.Request, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	form, ok := model.ParseFormType(in.FormType)
	if !ok {
		return nil, apperror.Validation("form_type %q must look like ABC-123", in.FormType)
	}
	details := model.EmptyDocument
	if len(in.Details) > 0 && string(in.Details) != "null" {
		if !json.Valid(in.Details) {
			return nil, apperror.Validation("details must be a JSON document")
		}
		details = string(in.Details)
	}

	var req *model.Request
	err := locked(ctx, s.Guard, func(ctx context.Context) error {
		approver, err := s.Resolver.ResolveInitialApprover(ctx, in.Department, in.SubDepartment)
		if err != nil {
			return err
		}

		now := s.Clock.Now()
		requester := model.NormalizeEmail(in.RequesterEmail)
		candidate := &model.Request{
			ID:                   s.IDs.NewID(form.IDPrefix()),
			FormType:             form.Raw,
			SubmittedAt:          now,
			RequesterName:        strings.TrimSpace(in.RequesterName),
			RequesterEmail:       requester,
			Department:           strings.TrimSpace(in.Department),
			SubDepartment:        strings.TrimSpace(in.SubDepartment),
			Status:               workflow.StatusPending,
			CurrentApproverEmail: model.NormalizeEmail(approver.Email),
			History: []model.HistoryEntry{
				{ApproverEmail: requester, Action: workflow.HistorySubmitted, Timestamp: now},
			},
			Details:         details,
			ITReviewDetails: model.EmptyDocument,
			UpdatedAt:       now,
		}
		entry.EntityID = candidate.ID
		entry.Details = map[string]interface{}{
			"form_type": candidate.FormType,
			"approver":  candidate.CurrentApproverEmail,
		}

		err = s.Tx.RunInTx(ctx, func(txCtx context.Context) error {
			if err := s.Requests.Create(txCtx, candidate); err != nil {
				return err
			}
			return s.Trail.Persist(txCtx, *entry)
		})
		if err != nil {
			return classify(err)
		}
		req = candidate
		return nil
	})
	if err != nil {
		return nil, err
	}
	return req, nil
}

func (s *approvalService) ProcessApproval(ctx context.Context, in ProcessRequest) Result {
	const op = "processApproval"
	actor := model.NormalizeEmail(in.Actor)
	entry := audit.Entry{
		Actor:    actor,
		Op:       op,
		Action:   auditAction(in.Action),
		EntityID: strings.TrimSpace(in.RequestID),
	}

	t, err := s.processApproval(ctx, actor, in, &entry)
	s.Trail.Record(entry.WithErr(err))
	if err != nil {
		return observed(op, failed(err))
	}

	transitions.WithLabelValues(string(t.action), string(t.outcome.Status)).Inc()
	s.dispatch(ctx, t.request, t.outcome.Effect, actor, t.notes)
	return observed(op, succeeded(resultMessage(t.action, t.outcome.Status), t.request.ID))
}

type transition struct {
	request *model.Request
	action  workflow.Action
	outcome workflow.Outcome
	notes   string
}

// processApproval checks every precondition before the first write, in this
// order: request exists, action is known, request is open, actor is the
// current approver, forward target is valid, IT chain is configured.
func (s *approvalService) processApproval(ctx context.Context, actor string, in ProcessRequest, entry *audit.Entry) (transition, error) {
	if err := validateStruct(in); err != nil {
		return transition{}, err
	}

	var t transition
	err := locked(ctx, s.Guard, func(ctx context.Context) error {
		req, err := s.Requests.FindByID(ctx, entry.EntityID)
		if err != nil {
			return err
		}

		action, err := workflow.ParseAction(in.Action)
		if err != nil {
			return apperror.Validation("action must be one of Approve, Reject or Forward")
		}
		// Closed requests have no approver, so the actor check rejects them too.
		if actor == "" || model.NormalizeEmail(req.CurrentApproverEmail) != actor {
			return apperror.Authorization("you are not the current approver of this request")
		}
		if req.Status.Terminal() {
			return apperror.Validation("request is already %s", req.Status)
		}
		forwardTo := model.NormalizeEmail(in.NextApproverEmail)
		if action == workflow.ActionForward && !validEmail(forwardTo) {
			return apperror.Validation("next_approver_email must be a valid email address")
		}
		itDetails := req.ITReviewDetails
		if len(in.ITReviewData) > 0 && string(in.ITReviewData) != "null" {
			if !req.Status.InITChain() {
				return apperror.Validation("it_review_data is only accepted during IT review")
			}
			if !json.Valid(in.ITReviewData) {
				return apperror.Validation("it_review_data must be a JSON document")
			}
			itDetails = string(in.ITReviewData)
		}

		form, ok := model.ParseFormType(req.FormType)
		if !ok {
			return apperror.Failed(nil, "request %s has malformed form type %q", req.ID, req.FormType)
		}
		itRequired := false
		if req.Status == workflow.StatusPending && action == workflow.ActionApprove {
			if itRequired, err = s.Policy.ITReviewRequired(ctx, form.Number); err != nil {
				return classify(err)
			}
		}
		var chain *workflow.Chain
		if workflow.NeedsChain(req.Status, action, itRequired) {
			c, err := s.Resolver.ResolveITChain(ctx, form.Number)
			if err != nil {
				return classify(err)
			}
			chain = &workflow.Chain{Reviewer: c.ReviewerEmail, Manager: c.ManagerEmail, Director: c.DirectorEmail}
		}

		outcome, err := workflow.Next(workflow.Input{
			Status:           req.Status,
			Action:           action,
			ITReviewRequired: itRequired,
			Chain:            chain,
			ForwardTo:        forwardTo,
		})
		if err != nil {
			return apperror.Failed(err, "transition failed")
		}

		now := s.Clock.Now()
		notes := audit.SanitizeNotes(in.Notes)
		history := make([]model.HistoryEntry, 0, len(req.History)+1)
		history = append(history, req.History...)
		history = append(history, model.HistoryEntry{
			ApproverEmail: actor,
			Action:        outcome.HistoryAction,
			Notes:         notes,
			Timestamp:     now,
		})
		update := repository.RequestUpdate{
			Status:               outcome.Status,
			CurrentApproverEmail: outcome.Approver,
			History:              history,
			ITReviewDetails:      itDetails,
			UpdatedAt:            now,
		}

		entry.Action = auditAction(string(action))
		entry.EntityName = req.FormType
		entry.Details = map[string]interface{}{
			"from":     string(req.Status),
			"to":       string(outcome.Status),
			"approver": outcome.Approver,
		}

		err = s.Tx.RunInTx(ctx, func(txCtx context.Context) error {
			if err := s.Requests.ApplyTransition(txCtx, req.ID, update); err != nil {
				return err
			}
			return s.Trail.Persist(txCtx, *entry)
		})
		if err != nil {
			return classify(err)
		}

		req.Status = update.Status
		req.CurrentApproverEmail = update.CurrentApproverEmail
		req.History = update.History
		req.ITReviewDetails = update.ITReviewDetails
		req.UpdatedAt = update.UpdatedAt
		t = transition{request: req, action: action, outcome: outcome, notes: notes}
		return nil
	})
	return t, err
}

func auditAction(action string) string {
	switch strings.ToLower(strings.TrimSpace(action)) {
	case "approve":
		return model.ActionApproveRequest
	case "reject":
		return model.ActionRejectRequest
	case "forward":
		return model.ActionForwardRequest
	}
	return "PROCESS_APPROVAL"
}

func resultMessage(action workflow.Action, status workflow.Status) string {
	switch {
	case action == workflow.ActionForward:
		return "Request forwarded"
	case status == workflow.StatusRejected:
		return "Request rejected"
	case status == workflow.StatusApproved:
		return "Request approved"
	}
	return fmt.Sprintf("Request approved, now %s", status)
}

// --- Side effects ---

// dispatch runs after the transition committed and the lock was released.
// Failures are logged and never change the operation's result.
func (s *approvalService) dispatch(ctx context.Context, req *model.Request, effect workflow.Effect, actor, notes string) {
	ctx = context.WithoutCancel(ctx)
	switch effect {
	case workflow.EffectNotifyApprover:
		s.notify(ctx, req.CurrentApproverEmail, notify.Message{
			Template:  notify.TemplateApprovalNeeded,
			Subject:   fmt.Sprintf("Approval needed: %s %s", req.FormType, req.ID),
			RequestID: req.ID,
			Data: map[string]interface{}{
				"form_type":      req.FormType,
				"requester_name": req.RequesterName,
				"department":     req.Department,
				"status":         req.Status,
				"from":           actor,
			},
		})
	case workflow.EffectNotifyRequester:
		s.notify(ctx, req.RequesterEmail, notify.Message{
			Template:  notify.TemplateRequestRejected,
			Subject:   fmt.Sprintf("Request rejected: %s", req.ID),
			RequestID: req.ID,
			Data:      map[string]interface{}{"rejected_by": actor, "notes": notes},
		})
	case workflow.EffectFinalize:
		s.finalize(ctx, req)
	}
}

// finalize hands an approved request off: the requester is told and the
// rendered document goes to the operations mailbox.
func (s *approvalService) finalize(ctx context.Context, req *model.Request) {
	data := map[string]interface{}{
		"form_type":         req.FormType,
		"details":           json.RawMessage(req.Details),
		"it_review_details": json.RawMessage(req.ITReviewDetails),
	}
	s.notify(ctx, req.RequesterEmail, notify.Message{
		Template:  notify.TemplateRequestApproved,
		Subject:   fmt.Sprintf("Request approved: %s", req.ID),
		RequestID: req.ID,
		Data:      data,
	})

	if s.Renderer == nil {
		return
	}
	doc, err := s.Renderer.Render(ctx, req)
	if err != nil {
		s.Logger.WithError(err).WithField("request_id", req.ID).Error("failed to render approved request")
		return
	}
	mailbox, err := s.Policy.OperationsMailbox(ctx)
	if err != nil || mailbox == "" {
		s.Logger.WithError(err).WithField("request_id", req.ID).Error("no operations mailbox to send the approved request to")
		return
	}
	s.notify(ctx, mailbox, notify.Message{
		Template:   notify.TemplateFinalDocument,
		Subject:    fmt.Sprintf("Approved %s %s", req.FormType, req.ID),
		RequestID:  req.ID,
		Data:       data,
		Attachment: &doc,
	})
}

func (s *approvalService) notify(ctx context.Context, recipient string, msg notify.Message) {
	if s.Notifier == nil || recipient == "" {
		return
	}
	if err := s.Notifier.Notify(ctx, recipient, msg); err != nil {
		s.Logger.WithError(err).WithFields(logrus.Fields{
			"recipient":  recipient,
			"template":   msg.Template,
			"request_id": msg.RequestID,
		}).Warn("notification failed")
	}
}

// --- Queries ---

// ListApprovals returns open requests the actor must act on, plus those a
// VP may see across their divisions. VP visibility never grants CanAct.
func (s *approvalService) ListApprovals(ctx context.Context, actor string) ([]RequestView, error) {
	const op = "listApprovals"
	actor = model.NormalizeEmail(actor)

	open, err := s.Requests.ListOpen(ctx)
	if err != nil {
		return nil, s.queryFailed(op, actor, err)
	}
	divisions, err := s.Resolver.ResolveVPDivisions(ctx, actor)
	if err != nil {
		return nil, s.queryFailed(op, actor, err)
	}

	views := make([]RequestView, 0)
	for _, req := range open {
		mine := model.NormalizeEmail(req.CurrentApproverEmail) == actor
		if !mine {
			visible, err := s.inVPDivision(ctx, divisions, req.Department)
			if err != nil {
				return nil, s.queryFailed(op, actor, err)
			}
			if !visible {
				continue
			}
		}
		views = append(views, RequestView{Request: req, CanAct: mine})
	}
	return views, nil
}

func (s *approvalService) ListMyRequests(ctx context.Context, actor string, page, pageSize int) (Page, error) {
	const op = "listMyRequests"
	actor = model.NormalizeEmail(actor)
	p := pagination.Normalize(page, pageSize)

	requests, total, err := s.Requests.ListByRequester(ctx, actor, p.Page, p.Limit)
	if err != nil {
		return Page{}, s.queryFailed(op, actor, err)
	}
	views := make([]RequestView, 0, len(requests))
	for _, req := range requests {
		views = append(views, RequestView{Request: req, CanAct: model.NormalizeEmail(req.CurrentApproverEmail) == actor})
	}
	return Page{Requests: views, Total: total, Page: p.Page, PageSize: p.Limit}, nil
}

// GetRequest returns a request visible to actor. Requests the actor may not
// see are reported as not found.
func (s *approvalService) GetRequest(ctx context.Context, id, actor string) (RequestView, error) {
	const op = "getRequest"
	actor = model.NormalizeEmail(actor)

	req, err := s.Requests.FindByID(ctx, strings.TrimSpace(id))
	if err != nil {
		return RequestView{}, s.queryFailed(op, actor, err)
	}
	visible, err := s.canView(ctx, req, actor)
	if err != nil {
		return RequestView{}, s.queryFailed(op, actor, err)
	}
	if !visible {
		return RequestView{}, s.queryFailed(op, actor, apperror.NotFound("request not found"))
	}
	return RequestView{Request: *req, CanAct: model.NormalizeEmail(req.CurrentApproverEmail) == actor}, nil
}

func (s *approvalService) canView(ctx context.Context, req *model.Request, actor string) (bool, error) {
	if actor == "" {
		return false, nil
	}
	if model.NormalizeEmail(req.RequesterEmail) == actor || model.NormalizeEmail(req.CurrentApproverEmail) == actor {
		return true, nil
	}
	for _, h := range req.History {
		if model.NormalizeEmail(h.ApproverEmail) == actor {
			return true, nil
		}
	}
	divisions, err := s.Resolver.ResolveVPDivisions(ctx, actor)
	if err != nil {
		return false, err
	}
	if ok, err := s.inVPDivision(ctx, divisions, req.Department); err != nil || ok {
		return ok, err
	}
	if s.Auth == nil {
		return false, nil
	}
	return s.Auth.IsAdmin(ctx, actor)
}

func (s *approvalService) inVPDivision(ctx context.Context, divisions []string, department string) (bool, error) {
	if len(divisions) == 0 {
		return false, nil
	}
	division, ok, err := s.Resolver.DivisionOf(ctx, department)
	if err != nil || !ok {
		return false, err
	}
	for _, d := range divisions {
		if d == division {
			return true, nil
		}
	}
	return false, nil
}

func (s *approvalService) queryFailed(op, actor string, err error) error {
	err = classify(err)
	entry := s.Logger.WithError(err).WithFields(logrus.Fields{
		"actor":      actor,
		"op":         op,
		"error_kind": apperror.KindOf(err),
	})
	if apperror.Is(err, apperror.KindOperationFailed) {
		entry.Error("query failed")
	} else {
		entry.Info("query rejected")
	}
	return err
}
