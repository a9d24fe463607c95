// Package workflow is the request state machine. Next is a pure function over
// (state, action); persistence, routing and side effects live in the service
// layer.
package workflow

import (
	"fmt"
	"strings"
)

// Status is the persisted request state.
type Status string

const (
	StatusPending           Status = "Pending"
	StatusPendingITReviewer Status = "PendingITReviewer"
	StatusPendingITManager  Status = "PendingITManager"
	StatusPendingITDirector Status = "PendingITDirector"
	StatusApproved          Status = "Approved"
	StatusRejected          Status = "Rejected"
)

// Statuses lists every state in workflow order.
var Statuses = []Status{
	StatusPending,
	StatusPendingITReviewer,
	StatusPendingITManager,
	StatusPendingITDirector,
	StatusApproved,
	StatusRejected,
}

// Terminal reports whether no further transition is possible.
func (s Status) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// Valid reports whether s is a known state.
func (s Status) Valid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// InITChain reports whether s is one of the IT review stages.
func (s Status) InITChain() bool {
	switch s {
	case StatusPendingITReviewer, StatusPendingITManager, StatusPendingITDirector:
		return true
	}
	return false
}

// Action is an approver decision.
type Action string

const (
	ActionApprove Action = "Approve"
	ActionReject  Action = "Reject"
	ActionForward Action = "Forward"
)

// ParseAction accepts an action name case-insensitively.
func ParseAction(raw string) (Action, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "approve":
		return ActionApprove, nil
	case "reject":
		return ActionReject, nil
	case "forward":
		return ActionForward, nil
	}
	return "", fmt.Errorf("unknown action %q", raw)
}

// History entry actions.
const (
	HistorySubmitted = "Submitted"
	HistoryApproved  = "Approved"
	HistoryRejected  = "Rejected"
	HistoryForwarded = "Forwarded"
)

// Effect is the side effect a transition asks the caller to trigger after commit.
type Effect int

const (
	EffectNone Effect = iota
	EffectNotifyApprover
	EffectNotifyRequester
	EffectFinalize
)

func (e Effect) String() string {
	switch e {
	case EffectNotifyApprover:
		return "notify_approver"
	case EffectNotifyRequester:
		return "notify_requester"
	case EffectFinalize:
		return "finalize"
	}
	return "none"
}

// Chain is the IT review escalation path for one form.
type Chain struct {
	Reviewer string
	Manager  string
	Director string
}

// Input describes a requested transition.
type Input struct {
	Status           Status
	Action           Action
	ITReviewRequired bool
	// Chain must be set whenever NeedsChain reports true.
	Chain     *Chain
	ForwardTo string
}

// Outcome is the computed next state.
type Outcome struct {
	Status        Status
	Approver      string
	HistoryAction string
	Effect        Effect
}

// ErrTerminal is returned for any action on an Approved or Rejected request.
type ErrTerminal struct{ Status Status }

func (e ErrTerminal) Error() string { return fmt.Sprintf("request is already %s", e.Status) }

// ErrChainRequired is returned when an IT transition is attempted without a chain.
var ErrChainRequired = fmt.Errorf("it review chain is required for this transition")

// NeedsChain reports whether resolving the IT review chain is required
// before calling Next.
func NeedsChain(status Status, action Action, itReviewRequired bool) bool {
	if action != ActionApprove {
		return false
	}
	switch status {
	case StatusPending:
		return itReviewRequired
	case StatusPendingITReviewer, StatusPendingITManager, StatusPendingITDirector:
		return true
	}
	return false
}

// Next computes the transition for in.
func Next(in Input) (Outcome, error) {
	if in.Status.Terminal() {
		return Outcome{}, ErrTerminal{Status: in.Status}
	}
	if !in.Status.Valid() {
		return Outcome{}, fmt.Errorf("unknown status %q", in.Status)
	}
	if NeedsChain(in.Status, in.Action, in.ITReviewRequired) && in.Chain == nil {
		return Outcome{}, ErrChainRequired
	}

	switch in.Action {
	case ActionReject:
		return Outcome{Status: StatusRejected, HistoryAction: HistoryRejected, Effect: EffectNotifyRequester}, nil
	case ActionForward:
		if strings.TrimSpace(in.ForwardTo) == "" {
			return Outcome{}, fmt.Errorf("forward requires a next approver")
		}
		// Forward is structurally allowed from every open state, including the IT stages.
		return Outcome{
			Status:        in.Status,
			Approver:      strings.ToLower(strings.TrimSpace(in.ForwardTo)),
			HistoryAction: HistoryForwarded,
			Effect:        EffectNotifyApprover,
		}, nil
	case ActionApprove:
		return approve(in)
	}
	return Outcome{}, fmt.Errorf("unknown action %q", in.Action)
}

func approve(in Input) (Outcome, error) {
	switch in.Status {
	case StatusPending:
		if !in.ITReviewRequired {
			return finalized(), nil
		}
		return escalate(StatusPendingITReviewer, in.Chain.Reviewer), nil
	case StatusPendingITReviewer:
		return escalate(StatusPendingITManager, in.Chain.Manager), nil
	case StatusPendingITManager:
		return escalate(StatusPendingITDirector, in.Chain.Director), nil
	case StatusPendingITDirector:
		return finalized(), nil
	}
	return Outcome{}, fmt.Errorf("cannot approve a request in status %q", in.Status)
}

func escalate(next Status, approver string) Outcome {
	return Outcome{
		Status:        next,
		Approver:      strings.ToLower(strings.TrimSpace(approver)),
		HistoryAction: HistoryApproved,
		Effect:        EffectNotifyApprover,
	}
}

func finalized() Outcome {
	return Outcome{Status: StatusApproved, HistoryAction: HistoryApproved, Effect: EffectFinalize}
}
