package notify

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"approvalflow/internal/model"
	"approvalflow/internal/workflow"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	accept bool
	sent   map[string][][]byte
}

func (s *fakeSender) SendTo(email string, payload []byte) bool {
	if !s.accept {
		return false
	}
	if s.sent == nil {
		s.sent = map[string][][]byte{}
	}
	s.sent[email] = append(s.sent[email], payload)
	return true
}

type failingNotifier struct{ err error }

func (f failingNotifier) Notify(context.Context, string, Message) error { return f.err }

func TestLogNotifier(t *testing.T) {
	logger, hook := test.NewNullLogger()
	n := NewLogNotifier(logger)

	err := n.Notify(context.Background(), "a@x.com", Message{
		Template:   TemplateFinalDocument,
		RequestID:  "HW7-1",
		Attachment: &Document{Name: "HW7-1.html", Body: []byte("<html></html>")},
	})
	require.NoError(t, err)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.InfoLevel, entry.Level)
	assert.Equal(t, "a@x.com", entry.Data["recipient"])
	assert.Equal(t, "HW7-1.html", entry.Data["attachment"])
	assert.Equal(t, 13, entry.Data["attachment_bytes"])
}

func TestHubNotifier(t *testing.T) {
	sender := &fakeSender{accept: true}
	n := NewHubNotifier(sender)

	require.NoError(t, n.Notify(context.Background(), "a@x.com", Message{Template: TemplateApprovalNeeded, RequestID: "HW7-1"}))
	require.Len(t, sender.sent["a@x.com"], 1)

	var event map[string]interface{}
	require.NoError(t, json.Unmarshal(sender.sent["a@x.com"][0], &event))
	assert.Equal(t, "approval.approval_needed", event["type"])

	sender.accept = false
	assert.ErrorIs(t, n.Notify(context.Background(), "a@x.com", Message{}), ErrDropped)
}

func TestMultiJoinsErrors(t *testing.T) {
	boom := errors.New("boom")
	sender := &fakeSender{accept: true}
	m := Multi{failingNotifier{err: boom}, NewHubNotifier(sender)}

	err := m.Notify(context.Background(), "a@x.com", Message{Template: TemplateRequestRejected})
	assert.ErrorIs(t, err, boom)
	assert.Len(t, sender.sent["a@x.com"], 1, "later notifiers still run")
}

func TestHTMLRenderer(t *testing.T) {
	ts := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	req := &model.Request{
		ID:             "HW7-20260304050607-ab12",
		FormType:       "HW-7",
		SubmittedAt:    ts,
		RequesterName:  "Ann",
		RequesterEmail: "ann@x.com",
		Department:     "IT",
		Status:         workflow.StatusApproved,
		History: []model.HistoryEntry{
			{ApproverEmail: "ann@x.com", Action: workflow.HistorySubmitted, Timestamp: ts},
			{ApproverEmail: "boss@x.com", Action: workflow.HistoryApproved, Notes: "<script>x</script>", Timestamp: ts},
		},
		Details:         `{"laptop":true}`,
		ITReviewDetails: model.EmptyDocument,
	}

	doc, err := NewHTMLRenderer().Render(context.Background(), req)
	require.NoError(t, err)
	body := string(doc.Body)

	assert.Equal(t, "HW7-20260304050607-ab12.html", doc.Name)
	assert.Contains(t, body, "laptop&#34;: true")
	assert.Contains(t, body, "Approved by boss@x.com")
	assert.NotContains(t, body, "<script>")
	assert.NotContains(t, body, "IT review")
	assert.Equal(t, 2, strings.Count(body, "<li>"))
}
