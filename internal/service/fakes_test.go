package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"approvalflow/internal/apperror"
	"approvalflow/internal/audit"
	"approvalflow/internal/cache"
	"approvalflow/internal/clock"
	"approvalflow/internal/concurrency"
	"approvalflow/internal/idgen"
	"approvalflow/internal/model"
	"approvalflow/internal/notify"
	"approvalflow/internal/repository"
	"approvalflow/internal/routing"
	"approvalflow/internal/workflow"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

// memDB is an in-memory store. memTx snapshots it so a failed transaction
// leaves no partial writes, like the gorm transaction manager.
type memDB struct {
	mu        sync.Mutex
	requests  map[string]model.Request
	approvers []model.Approver
	chains    map[string]model.ITReviewChain
	settings  map[string]model.Setting
	audits    []model.AuditLog

	rosterReads int
	failAudit   error
}

func newMemDB() *memDB {
	return &memDB{
		requests: map[string]model.Request{},
		chains:   map[string]model.ITReviewChain{},
		settings: map[string]model.Setting{},
	}
}

func cloneRequest(r model.Request) model.Request {
	r.History = append([]model.HistoryEntry(nil), r.History...)
	return r
}

type memSnapshot struct {
	requests  map[string]model.Request
	approvers []model.Approver
	chains    map[string]model.ITReviewChain
	settings  map[string]model.Setting
	audits    []model.AuditLog
}

func (db *memDB) snapshot() memSnapshot {
	db.mu.Lock()
	defer db.mu.Unlock()
	s := memSnapshot{
		requests:  make(map[string]model.Request, len(db.requests)),
		approvers: append([]model.Approver(nil), db.approvers...),
		chains:    make(map[string]model.ITReviewChain, len(db.chains)),
		settings:  make(map[string]model.Setting, len(db.settings)),
		audits:    append([]model.AuditLog(nil), db.audits...),
	}
	for k, v := range db.requests {
		s.requests[k] = cloneRequest(v)
	}
	for k, v := range db.chains {
		s.chains[k] = v
	}
	for k, v := range db.settings {
		s.settings[k] = v
	}
	return s
}

func (db *memDB) restore(s memSnapshot) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.requests, db.approvers, db.chains, db.settings, db.audits = s.requests, s.approvers, s.chains, s.settings, s.audits
}

func (db *memDB) request(id string) (model.Request, bool) {
	db.mu.Lock()
	defer db.mu.Unlock()
	r, ok := db.requests[id]
	return cloneRequest(r), ok
}

func (db *memDB) auditActions() []string {
	db.mu.Lock()
	defer db.mu.Unlock()
	actions := make([]string, 0, len(db.audits))
	for _, a := range db.audits {
		actions = append(actions, a.Action)
	}
	return actions
}

type memTx struct{ db *memDB }

func (t memTx) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	snap := t.db.snapshot()
	if err := fn(ctx); err != nil {
		t.db.restore(snap)
		return err
	}
	return nil
}

// --- requests ---

type memRequests struct{ db *memDB }

func (r memRequests) Create(_ context.Context, req *model.Request) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.requests[req.ID]; ok {
		return errors.New("duplicate key")
	}
	r.db.requests[req.ID] = cloneRequest(*req)
	return nil
}

func (r memRequests) FindByID(_ context.Context, id string) (*model.Request, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	req, ok := r.db.requests[id]
	if !ok {
		return nil, apperror.NotFound("request not found")
	}
	req = cloneRequest(req)
	return &req, nil
}

func (r memRequests) ApplyTransition(_ context.Context, id string, u repository.RequestUpdate) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	req, ok := r.db.requests[id]
	if !ok {
		return apperror.NotFound("request not found")
	}
	req.Status = u.Status
	req.CurrentApproverEmail = u.CurrentApproverEmail
	req.History = append([]model.HistoryEntry(nil), u.History...)
	req.ITReviewDetails = u.ITReviewDetails
	req.UpdatedAt = u.UpdatedAt
	r.db.requests[id] = req
	return nil
}

func (r memRequests) sorted(keep func(model.Request) bool) []model.Request {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []model.Request
	for _, req := range r.db.requests {
		if keep(req) {
			out = append(out, cloneRequest(req))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].SubmittedAt.Equal(out[j].SubmittedAt) {
			return out[i].SubmittedAt.After(out[j].SubmittedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func (r memRequests) ListOpen(context.Context) ([]model.Request, error) {
	return r.sorted(func(req model.Request) bool { return !req.Status.Terminal() }), nil
}

func (r memRequests) ListByRequester(_ context.Context, email string, page, limit int) ([]model.Request, int64, error) {
	all := r.sorted(func(req model.Request) bool { return req.RequesterEmail == email })
	start := (page - 1) * limit
	if start > len(all) {
		start = len(all)
	}
	end := start + limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], int64(len(all)), nil
}

func (r memRequests) CountByStatus(_ context.Context, email string) (map[workflow.Status]int64, error) {
	counts := map[workflow.Status]int64{}
	for _, req := range r.sorted(func(req model.Request) bool { return req.RequesterEmail == email }) {
		counts[req.Status]++
	}
	return counts, nil
}

func (r memRequests) CountAwaiting(_ context.Context, email string) (int64, error) {
	return int64(len(r.sorted(func(req model.Request) bool { return req.CurrentApproverEmail == email }))), nil
}

// --- roster ---

type memApprovers struct{ db *memDB }

func (r memApprovers) List(context.Context) ([]model.Approver, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.rosterReads++
	out := append([]model.Approver(nil), r.db.approvers...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Position != out[j].Position {
			return out[i].Position < out[j].Position
		}
		return out[i].Email < out[j].Email
	})
	return out, nil
}

func (r memApprovers) FindByEmail(_ context.Context, email string) (*model.Approver, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, a := range r.db.approvers {
		if a.Email == email {
			a := a
			return &a, nil
		}
	}
	return nil, apperror.NotFound("approver not found")
}

func (r memApprovers) Create(_ context.Context, a *model.Approver) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.approvers = append(r.db.approvers, *a)
	return nil
}

func (r memApprovers) Update(_ context.Context, a *model.Approver) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for i := range r.db.approvers {
		if r.db.approvers[i].Email == a.Email {
			r.db.approvers[i] = *a
			return nil
		}
	}
	return apperror.NotFound("approver not found")
}

func (r memApprovers) Delete(_ context.Context, email string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for i := range r.db.approvers {
		if r.db.approvers[i].Email == email {
			r.db.approvers = append(r.db.approvers[:i], r.db.approvers[i+1:]...)
			return nil
		}
	}
	return apperror.NotFound("approver not found")
}

// --- IT review chains ---

type memChains struct{ db *memDB }

func (r memChains) List(context.Context) ([]model.ITReviewChain, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := make([]model.ITReviewChain, 0, len(r.db.chains))
	for _, c := range r.db.chains {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FormID < out[j].FormID })
	return out, nil
}

func (r memChains) FindByFormID(_ context.Context, formID string) (*model.ITReviewChain, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	c, ok := r.db.chains[formID]
	if !ok {
		return nil, apperror.NotFound("IT review chain not found")
	}
	return &c, nil
}

func (r memChains) Create(_ context.Context, c *model.ITReviewChain) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.chains[c.FormID] = *c
	return nil
}

func (r memChains) Update(_ context.Context, c *model.ITReviewChain) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.chains[c.FormID]; !ok {
		return apperror.NotFound("IT review chain not found")
	}
	r.db.chains[c.FormID] = *c
	return nil
}

func (r memChains) Delete(_ context.Context, formID string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.chains[formID]; !ok {
		return apperror.NotFound("IT review chain not found")
	}
	delete(r.db.chains, formID)
	return nil
}

// --- settings and audit ---

type memSettings struct{ db *memDB }

func (r memSettings) List(context.Context) ([]model.Setting, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := make([]model.Setting, 0, len(r.db.settings))
	for _, s := range r.db.settings {
		out = append(out, s)
	}
	return out, nil
}

func (r memSettings) Upsert(_ context.Context, settings []model.Setting) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, s := range settings {
		r.db.settings[s.Key] = s
	}
	return nil
}

type memAudit struct{ db *memDB }

func (r memAudit) Log(_ context.Context, entry *model.AuditLog) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if r.db.failAudit != nil {
		return r.db.failAudit
	}
	r.db.audits = append(r.db.audits, *entry)
	return nil
}

func (r memAudit) List(_ context.Context, page, limit int) ([]model.AuditLog, int64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	out := make([]model.AuditLog, 0, len(r.db.audits))
	for i := len(r.db.audits) - 1; i >= 0; i-- {
		out = append(out, r.db.audits[i])
	}
	start := (page - 1) * limit
	if start > len(out) {
		start = len(out)
	}
	end := start + limit
	if end > len(out) {
		end = len(out)
	}
	return out[start:end], int64(len(out)), nil
}

// --- collaborators ---

type sentMessage struct {
	Recipient string
	Msg       notify.Message
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentMessage
	err  error
}

func (n *recordingNotifier) Notify(_ context.Context, recipient string, msg notify.Message) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentMessage{Recipient: recipient, Msg: msg})
	return n.err
}

func (n *recordingNotifier) messages() []sentMessage {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]sentMessage(nil), n.sent...)
}

func (n *recordingNotifier) reset() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = nil
}

type busyGuard struct{}

func (busyGuard) Acquire(context.Context) (func(), error) {
	return nil, apperror.Busy("system busy, please try again")
}

// stepClock advances one second per reading.
type stepClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

// --- harness ---

type harness struct {
	db        *memDB
	approvals ApprovalService
	approvers ApproverService
	chains    ITChainService
	settings  SettingsService
	audit     AuditService
	resolver  *routing.Resolver
	notifier  *recordingNotifier
	logs      *test.Hook
}

type harnessOption func(*harnessConfig)

type harnessConfig struct {
	guard concurrency.Guard
}

func withGuard(g concurrency.Guard) harnessOption {
	return func(c *harnessConfig) { c.guard = g }
}

const (
	infraApprover = "a@x.com"
	itApprover    = "b@x.com"
	opsApprover   = "ops@x.com"
	vpEmail       = "vp@x.com"
	adminEmail    = "admin@x.com"
	rootEmail     = "root@x.com"
	mailbox       = "handoff@x.com"
	reviewer      = "rev@x.com"
	manager       = "mgr@x.com"
	director      = "dir@x.com"
)

func seedRoster() []model.Approver {
	return []model.Approver{
		{Email: infraApprover, Name: "A", Level: 1, Role: model.RoleApprover, Department: "IT", SubDepartment: "Infra", Division: "Tech", Position: 1},
		{Email: itApprover, Name: "B", Level: 2, Role: model.RoleApprover, Department: "IT", Division: "Tech", Position: 2},
		{Email: opsApprover, Name: "O", Level: 1, Role: model.RoleApprover, Department: "Ops", Division: "Operations", Position: 3},
		{Email: vpEmail, Name: "V", Level: 10, Role: model.RoleApprover, Department: "Tech Office", Division: "Tech", Position: 4},
		{Email: adminEmail, Name: "Ad", Level: 5, Role: model.RoleAdmin, Department: "Admin", Division: "Corporate", Position: 5},
	}
}

func newHarness(t *testing.T, opts ...harnessOption) *harness {
	t.Helper()
	cfg := harnessConfig{guard: concurrency.NewGlobalLock(2 * time.Second)}
	for _, o := range opts {
		o(&cfg)
	}

	db := newMemDB()
	db.approvers = seedRoster()
	db.chains["7"] = model.ITReviewChain{FormID: "7", ReviewerEmail: reviewer, ManagerEmail: manager, DirectorEmail: director}

	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	clk := &stepClock{now: time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)}

	c := cache.New(cache.NewMemoryBackend(clock.System), time.Minute, logger)
	tx := memTx{db: db}
	approverRepo := memApprovers{db: db}
	chainRepo := memChains{db: db}
	resolver := routing.NewResolver(approverRepo, chainRepo, c)
	auth := NewAuthorizer(approverRepo, []string{rootEmail})
	trail := audit.NewTrail(memAudit{db: db}, logger, clk.Now)
	notifier := &recordingNotifier{}

	settings := NewSettingsService(memSettings{db: db}, tx, c, cfg.guard, auth, trail, clk, WorkflowSettings{
		ITReviewForms:     []string{"7", "9"},
		OperationsMailbox: mailbox,
	})

	return &harness{
		db: db,
		approvals: NewApprovalService(ApprovalDeps{
			Requests:   memRequests{db: db},
			Statistics: memRequests{db: db},
			Tx:         tx,
			Resolver:   resolver,
			Policy:     settings,
			Guard:      cfg.guard,
			Auth:       auth,
			Trail:      trail,
			Notifier:   notifier,
			Renderer:   notify.NewHTMLRenderer(),
			Clock:      clk,
			IDs:        idgen.Sequence(),
			Logger:     logger,
		}),
		approvers: NewApproverService(approverRepo, tx, resolver, cfg.guard, auth, trail),
		chains:    NewITChainService(chainRepo, tx, resolver, cfg.guard, auth, trail),
		settings:  settings,
		audit:     NewAuditService(memAudit{db: db}, auth),
		resolver:  resolver,
		notifier:  notifier,
		logs:      hook,
	}
}
