package service

import (
	"context"
	"strings"

	"approvalflow/internal/apperror"
	"approvalflow/internal/audit"
	"approvalflow/internal/concurrency"
	"approvalflow/internal/model"
	"approvalflow/internal/repository"
	"approvalflow/internal/routing"
)

type ITChainInput struct {
	FormID        string `json:"form_id" validate:"required"`
	ReviewerEmail string `json:"reviewer_email" validate:"required,email"`
	ManagerEmail  string `json:"manager_email" validate:"required,email"`
	DirectorEmail string `json:"director_email" validate:"required,email"`
}

type ITChainService interface {
	ListITReviewChains(ctx context.Context) ([]model.ITReviewChain, error)
	ManageITReviewChain(ctx context.Context, actor, action string, in ITChainInput) Result
}

type itChainService struct {
	chains   repository.ITChainRepository
	tx       repository.TransactionManager
	resolver *routing.Resolver
	guard    concurrency.Guard
	auth     *Authorizer
	trail    *audit.Trail
}

func NewITChainService(
	chains repository.ITChainRepository,
	tx repository.TransactionManager,
	resolver *routing.Resolver,
	guard concurrency.Guard,
	auth *Authorizer,
	trail *audit.Trail,
) ITChainService {
	return &itChainService{chains: chains, tx: tx, resolver: resolver, guard: guard, auth: auth, trail: trail}
}

func (s *itChainService) ListITReviewChains(ctx context.Context) ([]model.ITReviewChain, error) {
	chains, err := s.chains.List(ctx)
	return chains, classify(err)
}

func (s *itChainService) ManageITReviewChain(ctx context.Context, actor, action string, in ITChainInput) Result {
	const op = "manageItReviewChain"
	actor = model.NormalizeEmail(actor)
	action = strings.ToLower(strings.TrimSpace(action))
	entry := audit.Entry{Actor: actor, Op: op, EntityID: strings.TrimSpace(in.FormID)}

	message, err := s.manage(ctx, actor, action, in, &entry)
	s.trail.Record(entry.WithErr(err))
	if err != nil {
		return observed(op, failed(err))
	}
	return observed(op, succeeded(message, ""))
}

func (s *itChainService) manage(ctx context.Context, actor, action string, in ITChainInput, entry *audit.Entry) (string, error) {
	var message string
	switch action {
	case ManageAdd:
		entry.Action, message = model.ActionCreateITChain, "IT review chain added"
	case ManageUpdate:
		entry.Action, message = model.ActionUpdateITChain, "IT review chain updated"
	case ManageDelete:
		entry.Action, message = model.ActionDeleteITChain, "IT review chain deleted"
	default:
		entry.Action = "MANAGE_IT_CHAIN"
		return "", apperror.Validation("action must be one of add, update or delete")
	}

	if !model.ValidFormID(in.FormID) {
		return "", apperror.Validation("form_id must be a numeric form id")
	}
	chain := model.ITReviewChain{FormID: model.NormalizeFormID(in.FormID)}
	entry.EntityID = chain.FormID
	if action != ManageDelete {
		if err := validateStruct(in); err != nil {
			return "", err
		}
		chain.ReviewerEmail = model.NormalizeEmail(in.ReviewerEmail)
		chain.ManagerEmail = model.NormalizeEmail(in.ManagerEmail)
		chain.DirectorEmail = model.NormalizeEmail(in.DirectorEmail)
		entry.Details = map[string]interface{}{
			"reviewer": chain.ReviewerEmail,
			"manager":  chain.ManagerEmail,
			"director": chain.DirectorEmail,
		}
	}

	return message, locked(ctx, s.guard, func(ctx context.Context) error {
		if err := s.auth.RequireAdmin(ctx, actor); err != nil {
			return err
		}
		err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
			var err error
			switch action {
			case ManageAdd:
				if _, findErr := s.chains.FindByFormID(txCtx, chain.FormID); findErr == nil {
					return apperror.Validation("IT review chain for form %s already exists", chain.FormID)
				} else if !apperror.Is(findErr, apperror.KindNotFound) {
					return findErr
				}
				err = s.chains.Create(txCtx, &chain)
			case ManageUpdate:
				err = s.chains.Update(txCtx, &chain)
			case ManageDelete:
				err = s.chains.Delete(txCtx, chain.FormID)
			}
			if err != nil {
				return err
			}
			return s.trail.Persist(txCtx, *entry)
		})
		if err != nil {
			return classify(err)
		}
		s.resolver.InvalidateITChains(ctx)
		return nil
	})
}
