package routing

import (
	"context"
	"testing"
	"time"

	"approvalflow/internal/apperror"
	"approvalflow/internal/cache"
	"approvalflow/internal/model"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRoster struct {
	rows  []model.Approver
	calls int
}

func (s *stubRoster) List(context.Context) ([]model.Approver, error) {
	s.calls++
	out := make([]model.Approver, len(s.rows))
	copy(out, s.rows)
	return out, nil
}

type stubChains struct {
	rows []model.ITReviewChain
}

func (s *stubChains) List(context.Context) ([]model.ITReviewChain, error) {
	return s.rows, nil
}

func newResolver(roster *stubRoster, chains *stubChains) *Resolver {
	logger, _ := test.NewNullLogger()
	c := cache.New(cache.NewMemoryBackend(nil), time.Minute, logger)
	return NewResolver(roster, chains, c)
}

func TestResolveInitialApprover(t *testing.T) {
	roster := &stubRoster{rows: []model.Approver{
		{Email: "b@x", Department: "IT", SubDepartment: "", Level: 2, Division: "Tech"},
		{Email: "a@x", Department: "IT", SubDepartment: "Infra", Level: 1, Division: "Tech"},
		{Email: "c@x", Department: "IT", SubDepartment: "Infra", Level: 3, Division: "Tech"},
		{Email: "d@x", Department: "HR", SubDepartment: "", Level: 1, Division: "People"},
	}}
	r := newResolver(roster, &stubChains{})
	ctx := context.Background()

	tests := []struct {
		name    string
		dept    string
		sub     string
		want    string
		missing bool
	}{
		{name: "sub-department match picks minimum level", dept: "IT", sub: "Infra", want: "a@x"},
		{name: "department level only matches empty sub-department", dept: "IT", sub: "", want: "b@x"},
		{name: "case and whitespace insensitive", dept: " it ", sub: "INFRA", want: "a@x"},
		{name: "no fallback to department", dept: "IT", sub: "Helpdesk", missing: true},
		{name: "unknown department", dept: "Finance", missing: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := r.ResolveInitialApprover(ctx, tc.dept, tc.sub)
			if tc.missing {
				assert.True(t, apperror.Is(err, apperror.KindNotFound))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got.Email)
		})
	}
	assert.Equal(t, 1, roster.calls, "roster must be read through the cache")
}

// Any minimum-level match is acceptable when levels tie.
func TestResolveInitialApproverTie(t *testing.T) {
	roster := &stubRoster{rows: []model.Approver{
		{Email: "first@x", Department: "Ops", Level: 1},
		{Email: "second@x", Department: "Ops", Level: 1},
	}}
	r := newResolver(roster, &stubChains{})

	got, err := r.ResolveInitialApprover(context.Background(), "Ops", "")
	require.NoError(t, err)
	assert.Contains(t, []string{"first@x", "second@x"}, got.Email)
	assert.Equal(t, 1, got.Level)
}

func TestResolveITChain(t *testing.T) {
	chains := &stubChains{rows: []model.ITReviewChain{
		{FormID: "012", ReviewerEmail: "rev@x", ManagerEmail: "mgr@x", DirectorEmail: "dir@x"},
	}}
	r := newResolver(&stubRoster{}, chains)

	chain, err := r.ResolveITChain(context.Background(), "12")
	require.NoError(t, err)
	assert.Equal(t, "rev@x", chain.ReviewerEmail)

	_, err = r.ResolveITChain(context.Background(), "99")
	assert.True(t, apperror.Is(err, apperror.KindConfiguration))
}

func TestResolveVPDivisions(t *testing.T) {
	roster := &stubRoster{rows: []model.Approver{
		{Email: "vp@x", Department: "IT", Level: 10, Division: "Tech"},
		{Email: "vp@x", Department: "Data", Level: 12, Division: "Tech"},
		{Email: "vp@x", Department: "HR", Level: 11, Division: "People"},
		{Email: "vp@x", Department: "Ops", Level: 9, Division: "Operations"},
		{Email: "mgr@x", Department: "IT", Level: 5, Division: "Tech"},
	}}
	r := newResolver(roster, &stubChains{})
	ctx := context.Background()

	divisions, err := r.ResolveVPDivisions(ctx, "VP@x")
	require.NoError(t, err)
	assert.Equal(t, []string{"Tech", "People"}, divisions)

	divisions, err = r.ResolveVPDivisions(ctx, "mgr@x")
	require.NoError(t, err)
	assert.Empty(t, divisions)
}

func TestDepartmentAndDivisionMaps(t *testing.T) {
	roster := &stubRoster{rows: []model.Approver{
		{Email: "a@x", Department: "IT", Division: "Tech"},
		{Email: "b@x", Department: "Data", Division: "Tech"},
		{Email: "c@x", Department: "HR", Division: "People"},
	}}
	r := newResolver(roster, &stubChains{})
	ctx := context.Background()

	division, ok, err := r.DivisionOf(ctx, "it")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Tech", division)

	divisions, err := r.Divisions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"IT", "Data"}, divisions["Tech"])
}

func TestInvalidateRosterReflectsUpdates(t *testing.T) {
	roster := &stubRoster{rows: []model.Approver{
		{Email: "a@x", Department: "IT", Level: 1, Division: "Tech"},
		{Email: "new-vp@x", Department: "IT", Level: 3, Division: "Tech"},
	}}
	r := newResolver(roster, &stubChains{})
	ctx := context.Background()

	before, err := r.Roster(ctx)
	require.NoError(t, err)
	divisions, err := r.ResolveVPDivisions(ctx, "new-vp@x")
	require.NoError(t, err)
	assert.Empty(t, divisions)

	roster.rows[0].Email = "z@x"
	roster.rows[1].Level = 10
	r.InvalidateRoster(ctx, before)

	got, err := r.ResolveInitialApprover(ctx, "IT", "")
	require.NoError(t, err)
	assert.Equal(t, "z@x", got.Email)

	divisions, err = r.ResolveVPDivisions(ctx, "new-vp@x")
	require.NoError(t, err)
	assert.Equal(t, []string{"Tech"}, divisions)
}

func TestVPEmails(t *testing.T) {
	got := VPEmails([]model.Approver{
		{Email: "VP@x", Level: 10},
		{Email: "vp@x", Level: 11},
		{Email: "low@x", Level: 2},
	})
	assert.Equal(t, []string{"vp@x"}, got)
}
