package services

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/iota-uz/crm-sdk/modules/crm/domain/deal"
	"github.com/iota-uz/crm-sdk/modules/crm/domain/team"
	"github.com/iota-uz/crm-sdk/modules/crm/domain/user"
)

// TreeNode is a presentation-ordered view of one user in the org tree.
// Depth and Position come from a pre-order traversal and carry no business
// meaning.
type TreeNode struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	Role      string     `json:"role"`
	Level     int        `json:"level"`
	ManagerID *uuid.UUID `json:"manager_id,omitempty"`
	TeamID    *uuid.UUID `json:"team_id,omitempty"`
	TeamName  string     `json:"team_name,omitempty"`
	Depth     int        `json:"depth"`
	Position  int        `json:"position"`
}

type HierarchyService struct {
	users user.Repository
	teams team.Repository
	deals deal.Repository
}

func NewHierarchyService(users user.Repository, teams team.Repository, deals deal.Repository) *HierarchyService {
	return &HierarchyService{users: users, teams: teams, deals: deals}
}

// Tree builds the org tree from a fresh user snapshot. Children are sorted
// by (level asc, team name asc, name asc); users whose manager is absent
// from the snapshot are treated as roots.
func (s *HierarchyService) Tree(ctx context.Context) ([]TreeNode, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, mapPgError(err)
	}
	teams, err := s.teams.List(ctx)
	if err != nil {
		return nil, mapPgError(err)
	}

	teamNames := make(map[uuid.UUID]string, len(teams))
	for _, t := range teams {
		teamNames[t.ID] = t.Name
	}
	return buildTree(users, teamNames), nil
}

func buildTree(users []user.User, teamNames map[uuid.UUID]string) []TreeNode {
	byID := make(map[uuid.UUID]user.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	children := make(map[uuid.UUID][]user.User)
	var roots []user.User
	for _, u := range users {
		if u.ManagerID == nil {
			roots = append(roots, u)
			continue
		}
		if _, ok := byID[*u.ManagerID]; !ok {
			roots = append(roots, u)
			continue
		}
		children[*u.ManagerID] = append(children[*u.ManagerID], u)
	}

	teamName := func(u user.User) string {
		if u.TeamID == nil {
			return ""
		}
		return teamNames[*u.TeamID]
	}
	layoutOrder := func(list []user.User) {
		sort.SliceStable(list, func(i, j int) bool {
			a, b := list[i], list[j]
			if a.Level != b.Level {
				return a.Level < b.Level
			}
			if ta, tb := teamName(a), teamName(b); ta != tb {
				return ta < tb
			}
			return a.Name < b.Name
		})
	}
	layoutOrder(roots)
	for _, list := range children {
		layoutOrder(list)
	}

	out := make([]TreeNode, 0, len(users))
	visited := make(map[uuid.UUID]bool, len(users))
	position := 0

	var walk func(u user.User, depth int)
	walk = func(u user.User, depth int) {
		if visited[u.ID] {
			return
		}
		visited[u.ID] = true
		out = append(out, TreeNode{
			ID:        u.ID,
			Name:      u.Name,
			Role:      u.Role,
			Level:     u.Level,
			ManagerID: u.ManagerID,
			TeamID:    u.TeamID,
			TeamName:  teamName(u),
			Depth:     depth,
			Position:  position,
		})
		position++
		for _, child := range children[u.ID] {
			walk(child, depth+1)
		}
	}
	for _, root := range roots {
		walk(root, 0)
	}
	return out
}

// visibilityPolicy decides which users a principal sees; implementations
// are split by authority so level checks stay in one place.
type visibilityPolicy interface {
	visibleIDs(p user.Principal, users []user.User) map[uuid.UUID]struct{}
}

type rootAuthority struct{}

func (rootAuthority) visibleIDs(_ user.Principal, users []user.User) map[uuid.UUID]struct{} {
	out := make(map[uuid.UUID]struct{}, len(users))
	for _, u := range users {
		out[u.ID] = struct{}{}
	}
	return out
}

type subordinateAuthority struct{}

func (subordinateAuthority) visibleIDs(p user.Principal, users []user.User) map[uuid.UUID]struct{} {
	out := map[uuid.UUID]struct{}{p.ID: {}}

	// Closure over the manager graph. Each user is added at most once, so
	// the loop terminates even if the snapshot contains a cycle.
	for {
		grew := false
		for _, u := range users {
			if u.ManagerID == nil {
				continue
			}
			if _, seen := out[u.ID]; seen {
				continue
			}
			if _, ok := out[*u.ManagerID]; ok {
				out[u.ID] = struct{}{}
				grew = true
			}
		}
		if !grew {
			break
		}
	}

	// Lateral team peers of equal-or-lower authority.
	if p.TeamID != nil {
		for _, u := range users {
			if u.TeamID != nil && *u.TeamID == *p.TeamID && u.Level >= p.Level {
				out[u.ID] = struct{}{}
			}
		}
	}
	return out
}

func policyFor(level int) visibilityPolicy {
	if level == user.LevelOrgWide {
		return rootAuthority{}
	}
	return subordinateAuthority{}
}

// VisibleUserIDs resolves the set of user ids the principal may see. A
// fresh snapshot is read on every call so hierarchy edits apply
// immediately.
func (s *HierarchyService) VisibleUserIDs(ctx context.Context, p user.Principal) (map[uuid.UUID]struct{}, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, mapPgError(err)
	}
	return policyFor(p.Level).visibleIDs(p, users), nil
}

// TeamVisibleUsers is the team-scoped variant used by "my team" views.
// Level-1 callers still get the full user list; a teamless principal sees
// only itself.
func (s *HierarchyService) TeamVisibleUsers(ctx context.Context, p user.Principal) ([]user.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, mapPgError(err)
	}
	if p.Level == user.LevelOrgWide {
		return users, nil
	}
	if p.TeamID == nil {
		for _, u := range users {
			if u.ID == p.ID {
				return []user.User{u}, nil
			}
		}
		return nil, errNotFound("principal not found", nil)
	}

	out := make([]user.User, 0, len(users))
	for _, u := range users {
		if u.TeamID != nil && *u.TeamID == *p.TeamID && u.Level >= p.Level {
			out = append(out, u)
		}
	}
	return out, nil
}

// VisibleDeals filters the deal collection down to owners the principal
// may see.
func (s *HierarchyService) VisibleDeals(ctx context.Context, p user.Principal) ([]deal.Deal, error) {
	visible, err := s.VisibleUserIDs(ctx, p)
	if err != nil {
		return nil, err
	}
	deals, err := s.deals.List(ctx)
	if err != nil {
		return nil, mapPgError(err)
	}

	out := make([]deal.Deal, 0, len(deals))
	for _, d := range deals {
		if _, ok := visible[d.OwnerID]; ok {
			out = append(out, d)
		}
	}
	return out, nil
}
