package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/iota-uz/crm-sdk/modules/crm/domain/events"
	"github.com/iota-uz/crm-sdk/modules/crm/domain/user"
	"github.com/iota-uz/crm-sdk/pkg/eventbus"
)

type AssignmentService struct {
	users     user.Repository
	publisher eventbus.EventBus
}

func NewAssignmentService(users user.Repository, publisher eventbus.EventBus) *AssignmentService {
	return &AssignmentService{users: users, publisher: publisher}
}

// ValidateManagerAssignment checks the hierarchy invariants for assigning
// proposedManagerID to userID at userLevel. It never mutates state.
func (s *AssignmentService) ValidateManagerAssignment(ctx context.Context, userID uuid.UUID, proposedManagerID *uuid.UUID, userLevel int) (*ValidationResult, error) {
	if !user.ValidLevel(userLevel) {
		return invalid(fmt.Sprintf("level must be between %d and %d", user.LevelOrgWide, user.LevelJunior)), nil
	}

	if proposedManagerID == nil {
		if userLevel == user.LevelOrgWide {
			return valid(), nil
		}
		return invalid("levels 2-4 require a manager"), nil
	}

	if *proposedManagerID == userID {
		return invalid("a user may not be their own manager"), nil
	}

	manager, err := s.users.GetByID(ctx, *proposedManagerID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return invalid("proposed manager does not exist"), nil
		}
		return nil, mapPgError(err)
	}

	if userLevel >= user.LevelSenior && manager.Level > user.LevelManager {
		return invalid("a level-3/4 user requires a manager of level 2 or above"), nil
	}

	cyclic, err := s.wouldCycle(ctx, userID, manager)
	if err != nil {
		return nil, err
	}
	if cyclic {
		return invalid("assignment would make the user its own ancestor"), nil
	}
	return valid(), nil
}

// wouldCycle walks the proposed manager's chain upward; userID appearing on
// it means the assignment would close a management cycle. A visited set
// guards against pre-existing cycles in stored data.
func (s *AssignmentService) wouldCycle(ctx context.Context, userID uuid.UUID, manager user.User) (bool, error) {
	visited := map[uuid.UUID]bool{}
	current := manager
	for {
		if current.ID == userID {
			return true, nil
		}
		if visited[current.ID] {
			return false, errInvariant("manager chain already contains a cycle", nil)
		}
		visited[current.ID] = true

		if current.ManagerID == nil {
			return false, nil
		}
		next, err := s.users.GetByID(ctx, *current.ManagerID)
		if err != nil {
			if errors.Is(err, user.ErrNotFound) {
				return false, nil
			}
			return false, mapPgError(err)
		}
		current = next
	}
}

// CanReassign decides whether the principal has authority to change the
// target's manager. Separate from assignment validity on purpose.
func (s *AssignmentService) CanReassign(target user.User, p user.Principal) *ValidationResult {
	switch {
	case p.Level == user.LevelOrgWide:
		return valid()
	case p.Level == user.LevelManager:
		if target.Level <= user.LevelManager {
			return invalid("level-2 principals may not reassign level-1/2 users")
		}
		if target.ManagerID == nil || *target.ManagerID != p.ID {
			return invalid("level-2 principals may only reassign their own direct reports")
		}
		return valid()
	default:
		return invalid("insufficient authority to reassign users")
	}
}

// AssignManager applies a manager change after both the authorization and
// validity checks pass.
func (s *AssignmentService) AssignManager(ctx context.Context, userID uuid.UUID, managerID *uuid.UUID, p user.Principal) (user.User, error) {
	target, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.User{}, errNotFound("user not found", err)
		}
		return user.User{}, mapPgError(err)
	}

	if res := s.CanReassign(target, p); !res.Valid {
		return user.User{}, errForbidden(res.Error)
	}

	res, err := s.ValidateManagerAssignment(ctx, userID, managerID, target.Level)
	if err != nil {
		return user.User{}, err
	}
	if !res.Valid {
		return user.User{}, errValidation("CRM_INVALID_MANAGER", res.Error)
	}

	if err := s.users.SetManager(ctx, userID, managerID); err != nil {
		return user.User{}, mapPgError(err)
	}
	target.ManagerID = managerID

	s.publisher.Publish(events.ManagerAssigned{
		UserID:     userID,
		ManagerID:  managerID,
		AssignedBy: p.ID,
		OccurredAt: time.Now().UTC(),
	})
	return target, nil
}
