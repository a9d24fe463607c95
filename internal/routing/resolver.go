// Package routing picks approvers: the initial approver for a department,
// the IT review chain for a form, and the divisions a VP may see.
package routing

import (
	"context"
	"strings"

	"approvalflow/internal/apperror"
	"approvalflow/internal/cache"
	"approvalflow/internal/model"
)

// RosterSource reads the approver roster from the store.
type RosterSource interface {
	List(ctx context.Context) ([]model.Approver, error)
}

// ChainSource reads the IT review chains from the store.
type ChainSource interface {
	List(ctx context.Context) ([]model.ITReviewChain, error)
}

type Resolver struct {
	roster RosterSource
	chains ChainSource
	cache  *cache.Cache
}

func NewResolver(roster RosterSource, chains ChainSource, c *cache.Cache) *Resolver {
	return &Resolver{roster: roster, chains: chains, cache: c}
}

// Roster returns the cached roster snapshot in roster order.
func (r *Resolver) Roster(ctx context.Context) ([]model.Approver, error) {
	return cache.Fetch(ctx, r.cache, cache.KeyRoster, r.roster.List)
}

// ResolveInitialApprover returns the lowest-level approver registered for
// exactly (department, subDepartment). An empty subDepartment only matches
// department-level rows; there is no fallback from a sub-department to its
// department.
func (r *Resolver) ResolveInitialApprover(ctx context.Context, department, subDepartment string) (model.Approver, error) {
	roster, err := r.Roster(ctx)
	if err != nil {
		return model.Approver{}, err
	}

	var best *model.Approver
	for i := range roster {
		row := &roster[i]
		if !sameName(row.Department, department) || !sameName(row.SubDepartment, subDepartment) {
			continue
		}
		if best == nil || row.Level < best.Level {
			best = row
		}
	}
	if best == nil {
		if strings.TrimSpace(subDepartment) == "" {
			return model.Approver{}, apperror.NotFound("no approver configured for department %q", department)
		}
		return model.Approver{}, apperror.NotFound("no approver configured for department %q, sub-department %q", department, subDepartment)
	}
	return *best, nil
}

// ResolveITChain returns the IT review chain for a numeric form id. A
// missing chain is a configuration error.
func (r *Resolver) ResolveITChain(ctx context.Context, formID string) (model.ITReviewChain, error) {
	chains, err := cache.Fetch(ctx, r.cache, cache.KeyITChains, r.loadChains)
	if err != nil {
		return model.ITReviewChain{}, err
	}
	chain, ok := chains[model.NormalizeFormID(formID)]
	if !ok {
		return model.ITReviewChain{}, apperror.Configuration("no IT review chain configured for form %s", formID)
	}
	return chain, nil
}

func (r *Resolver) loadChains(ctx context.Context) (map[string]model.ITReviewChain, error) {
	rows, err := r.chains.List(ctx)
	if err != nil {
		return nil, err
	}
	chains := make(map[string]model.ITReviewChain, len(rows))
	for _, row := range rows {
		chains[model.NormalizeFormID(row.FormID)] = row
	}
	return chains, nil
}

// ResolveVPDivisions returns every division in which email holds a VP-level
// roster row. The result only widens what the user may see in listings.
func (r *Resolver) ResolveVPDivisions(ctx context.Context, email string) ([]string, error) {
	email = model.NormalizeEmail(email)
	return cache.Fetch(ctx, r.cache, cache.VPKey(email), func(ctx context.Context) ([]string, error) {
		roster, err := r.Roster(ctx)
		if err != nil {
			return nil, err
		}
		divisions := []string{}
		seen := map[string]bool{}
		for _, row := range roster {
			if model.NormalizeEmail(row.Email) != email || !row.IsVP() || seen[row.Division] {
				continue
			}
			seen[row.Division] = true
			divisions = append(divisions, row.Division)
		}
		return divisions, nil
	})
}

// Departments maps each department (lower-cased) to its division.
func (r *Resolver) Departments(ctx context.Context) (map[string]string, error) {
	return cache.Fetch(ctx, r.cache, cache.KeyDepartments, func(ctx context.Context) (map[string]string, error) {
		roster, err := r.Roster(ctx)
		if err != nil {
			return nil, err
		}
		departments := make(map[string]string)
		for _, row := range roster {
			key := nameKey(row.Department)
			if _, ok := departments[key]; !ok {
				departments[key] = row.Division
			}
		}
		return departments, nil
	})
}

// Divisions maps each division to its departments in roster order.
func (r *Resolver) Divisions(ctx context.Context) (map[string][]string, error) {
	return cache.Fetch(ctx, r.cache, cache.KeyDivisions, func(ctx context.Context) (map[string][]string, error) {
		departments, err := r.Departments(ctx)
		if err != nil {
			return nil, err
		}
		roster, err := r.Roster(ctx)
		if err != nil {
			return nil, err
		}
		divisions := make(map[string][]string)
		seen := map[string]bool{}
		for _, row := range roster {
			key := nameKey(row.Department)
			if seen[key] {
				continue
			}
			seen[key] = true
			division := departments[key]
			divisions[division] = append(divisions[division], row.Department)
		}
		return divisions, nil
	})
}

// DivisionOf returns the division a department belongs to.
func (r *Resolver) DivisionOf(ctx context.Context, department string) (string, bool, error) {
	departments, err := r.Departments(ctx)
	if err != nil {
		return "", false, err
	}
	division, ok := departments[nameKey(department)]
	return division, ok, nil
}

// VPEmails returns every roster email with at least one VP-level row.
func VPEmails(roster []model.Approver) []string {
	emails := []string{}
	seen := map[string]bool{}
	for _, row := range roster {
		email := model.NormalizeEmail(row.Email)
		if row.IsVP() && !seen[email] {
			seen[email] = true
			emails = append(emails, email)
		}
	}
	return emails
}

// InvalidateRoster evicts every roster-derived key. before is the roster as
// seen prior to the write; the roster is re-read from the store so that users
// who just became VPs lose any cached empty entry too. Must be called by the
// lock holder before releasing the lock.
func (r *Resolver) InvalidateRoster(ctx context.Context, before []model.Approver) {
	keys := []string{cache.KeyRoster, cache.KeyDepartments, cache.KeyDivisions}
	affected := VPEmails(before)
	if after, err := r.roster.List(ctx); err == nil {
		affected = append(affected, VPEmails(after)...)
	}
	seen := map[string]bool{}
	for _, email := range affected {
		if !seen[email] {
			seen[email] = true
			keys = append(keys, cache.VPKey(email))
		}
	}
	r.cache.Invalidate(ctx, "roster_write", keys...)
}

// InvalidateITChains evicts the IT review chain map.
func (r *Resolver) InvalidateITChains(ctx context.Context) {
	r.cache.Invalidate(ctx, "it_chain_write", cache.KeyITChains)
}

func nameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func sameName(a, b string) bool {
	return nameKey(a) == nameKey(b)
}
