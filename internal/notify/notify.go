// Package notify holds the outbound collaborators the workflow triggers
// after a transition commits: approver/requester notifications and the
// rendered document sent on finalization.
package notify

import (
	"context"
	"encoding/json"
	"errors"

	"approvalflow/internal/model"

	"github.com/sirupsen/logrus"
)

// Templates understood by every notifier.
const (
	TemplateApprovalNeeded  = "approval_needed"
	TemplateRequestRejected = "request_rejected"
	TemplateRequestApproved = "request_approved"
	TemplateFinalDocument   = "final_document"
)

// Document is a rendered artifact attached to a message.
type Document struct {
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"-"`
}

type Message struct {
	Template   string                 `json:"template"`
	Subject    string                 `json:"subject"`
	RequestID  string                 `json:"request_id"`
	Data       map[string]interface{} `json:"data,omitempty"`
	Attachment *Document              `json:"attachment,omitempty"`
}

// Notifier delivers a message to one recipient. Callers treat delivery as
// fire-and-forget: errors are logged, never surfaced to the user.
type Notifier interface {
	Notify(ctx context.Context, recipient string, msg Message) error
}

// DocumentRenderer produces the document dispatched when a request is approved.
type DocumentRenderer interface {
	Render(ctx context.Context, req *model.Request) (Document, error)
}

// LogNotifier writes each message to the structured log.
type LogNotifier struct {
	logger logrus.FieldLogger
}

func NewLogNotifier(logger logrus.FieldLogger) *LogNotifier {
	return &LogNotifier{logger: logger.WithField("component", "notifier")}
}

func (n *LogNotifier) Notify(_ context.Context, recipient string, msg Message) error {
	entry := n.logger.WithFields(logrus.Fields{
		"recipient":  recipient,
		"template":   msg.Template,
		"request_id": msg.RequestID,
		"subject":    msg.Subject,
	})
	if msg.Attachment != nil {
		entry = entry.WithFields(logrus.Fields{
			"attachment":       msg.Attachment.Name,
			"attachment_bytes": len(msg.Attachment.Body),
		})
	}
	entry.Info("notification dispatched")
	return nil
}

// Sender pushes a payload to every live connection of a user.
type Sender interface {
	SendTo(email string, payload []byte) bool
}

// ErrDropped is returned when the live channel could not accept a message.
var ErrDropped = errors.New("live notification dropped")

// HubNotifier pushes messages as JSON events over the websocket hub.
type HubNotifier struct {
	sender Sender
}

func NewHubNotifier(sender Sender) *HubNotifier {
	return &HubNotifier{sender: sender}
}

type hubEvent struct {
	Type string  `json:"type"`
	Msg  Message `json:"message"`
}

func (n *HubNotifier) Notify(_ context.Context, recipient string, msg Message) error {
	payload, err := json.Marshal(hubEvent{Type: "approval." + msg.Template, Msg: msg})
	if err != nil {
		return err
	}
	if !n.sender.SendTo(recipient, payload) {
		return ErrDropped
	}
	return nil
}

// Multi delivers to every notifier and joins their errors.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, recipient string, msg Message) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, recipient, msg); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
