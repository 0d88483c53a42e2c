package services

import (
	"context"
	"log"
	"sync"

	"github.com/4lexanderpardo09/help-desk-back-sub000/internal/domain/models"
	"github.com/4lexanderpardo09/help-desk-back-sub000/pkg/constants"
)

// AssignmentResolverService answers candidate lookups for the engine. It
// selects a named strategy from the step's flags instead of branching
// inside the engine, and caches the role adjacency table for the
// boss-chain walk.
type AssignmentResolverService struct {
	users UserDirectory

	roleHierarchyMu    sync.RWMutex
	roleHierarchyCache map[string]*string
}

// NewAssignmentResolverService creates a new AssignmentResolverService
func NewAssignmentResolverService(users UserDirectory) *AssignmentResolverService {
	return &AssignmentResolverService{
		users:              users,
		roleHierarchyCache: make(map[string]*string),
	}
}

// candidateStrategy resolves the eligible users for one step.
type candidateStrategy interface {
	Resolve(ctx context.Context, step *models.Step, ticket *models.Ticket) ([]*models.User, error)
}

// GetCandidatesForStep returns zero, one or many eligible users for a
// step, selected by the step's flags.
func (s *AssignmentResolverService) GetCandidatesForStep(ctx context.Context, step *models.Step, ticket *models.Ticket) ([]*models.User, error) {
	return s.strategyFor(step).Resolve(ctx, step, ticket)
}

func (s *AssignmentResolverService) strategyFor(step *models.Step) candidateStrategy {
	switch {
	case step.RequiresManualSelection:
		return &ManualStrategy{}
	case step.AssignToCreator:
		return &CreatorStrategy{users: s.users}
	case step.NeedsBossApproval:
		return &BossStrategy{resolver: s}
	case step.AssignedRoleID != nil:
		return &RoleRegionStrategy{users: s.users}
	default:
		// Steps with no routing flags stay with whoever opened the ticket.
		return &CreatorStrategy{users: s.users}
	}
}

// GetUsersByRole returns the active holders of a role, optionally
// narrowed to a company and region.
func (s *AssignmentResolverService) GetUsersByRole(ctx context.Context, roleID string, companyID, regionID *string) ([]*models.User, error) {
	return s.users.GetUsersByRole(ctx, roleID, companyID, regionID)
}

// RefreshRoleHierarchy reloads the role adjacency cache. Call on startup
// and whenever roles are modified.
func (s *AssignmentResolverService) RefreshRoleHierarchy(ctx context.Context) error {
	roles, err := s.users.GetAllRoles(ctx)
	if err != nil {
		return err
	}

	s.roleHierarchyMu.Lock()
	defer s.roleHierarchyMu.Unlock()

	s.roleHierarchyCache = make(map[string]*string, len(roles))
	for _, role := range roles {
		s.roleHierarchyCache[role.ID] = role.ParentRoleID
	}
	return nil
}

// superiorRole returns the parent role of roleID, or nil when the
// organizational chart has no mapped superior.
func (s *AssignmentResolverService) superiorRole(roleID string) *string {
	s.roleHierarchyMu.RLock()
	defer s.roleHierarchyMu.RUnlock()
	return s.roleHierarchyCache[roleID]
}

// superiorChain walks the role hierarchy upwards from roleID. Bounded
// depth and a visited set guard against cycles in bad data.
func (s *AssignmentResolverService) superiorChain(roleID string) []string {
	s.roleHierarchyMu.RLock()
	defer s.roleHierarchyMu.RUnlock()

	chain := make([]string, 0)
	visited := map[string]bool{roleID: true}

	currentID := roleID
	for depth := 0; depth < constants.BossWalkMaxDepth; depth++ {
		parentID, exists := s.roleHierarchyCache[currentID]
		if !exists || parentID == nil {
			break
		}
		if visited[*parentID] {
			log.Printf("⚠️ Circular role hierarchy detected at %s", *parentID)
			break
		}
		visited[*parentID] = true
		chain = append(chain, *parentID)
		currentID = *parentID
	}
	return chain
}

// ==================== Strategies ====================

// CreatorStrategy assigns the step back to whoever opened the ticket.
type CreatorStrategy struct {
	users UserDirectory
}

// Resolve returns the ticket creator as the single candidate.
func (cs *CreatorStrategy) Resolve(ctx context.Context, step *models.Step, ticket *models.Ticket) ([]*models.User, error) {
	creator, err := cs.users.GetByID(ctx, ticket.CreatorID)
	if err != nil {
		return nil, err
	}
	if creator == nil || !creator.Active {
		return nil, nil
	}
	return []*models.User{creator}, nil
}

// BossStrategy walks the organizational chart upwards from the ticket
// creator's role. Two-tier search per superior role: prefer a candidate
// sharing the ticket's region, fall back to any active holder. Returns
// none when no mapped superior role has an active holder.
type BossStrategy struct {
	resolver *AssignmentResolverService
}

// Resolve returns the boss candidates for the ticket.
func (bs *BossStrategy) Resolve(ctx context.Context, step *models.Step, ticket *models.Ticket) ([]*models.User, error) {
	creator, err := bs.resolver.users.GetByID(ctx, ticket.CreatorID)
	if err != nil {
		return nil, err
	}
	if creator == nil || creator.RoleID == nil {
		return nil, nil
	}

	for _, superiorID := range bs.resolver.superiorChain(*creator.RoleID) {
		// Tier 1: same region as the ticket
		if ticket.RegionID != nil {
			regional, err := bs.resolver.users.GetUsersByRole(ctx, superiorID, ticket.CompanyID, ticket.RegionID)
			if err != nil {
				return nil, err
			}
			if len(regional) > 0 {
				return regional, nil
			}
		}

		// Tier 2: any active holder of the superior role
		holders, err := bs.resolver.users.GetUsersByRole(ctx, superiorID, ticket.CompanyID, nil)
		if err != nil {
			return nil, err
		}
		if len(holders) > 0 {
			return holders, nil
		}
	}
	return nil, nil
}

// RoleRegionStrategy returns the active holders of the step's assigned
// role, narrowed to the ticket's company and region when set. When the
// regional lookup comes back empty the region filter is dropped.
type RoleRegionStrategy struct {
	users UserDirectory
}

// Resolve returns the role-based candidate pool.
func (rs *RoleRegionStrategy) Resolve(ctx context.Context, step *models.Step, ticket *models.Ticket) ([]*models.User, error) {
	if step.AssignedRoleID == nil {
		return nil, nil
	}

	if ticket.RegionID != nil {
		regional, err := rs.users.GetUsersByRole(ctx, *step.AssignedRoleID, ticket.CompanyID, ticket.RegionID)
		if err != nil {
			return nil, err
		}
		if len(regional) > 0 {
			return regional, nil
		}
	}

	return rs.users.GetUsersByRole(ctx, *step.AssignedRoleID, ticket.CompanyID, nil)
}

// ManualStrategy yields no candidates: the step demands explicit
// selection by an operator.
type ManualStrategy struct{}

// Resolve returns no candidates.
func (ms *ManualStrategy) Resolve(ctx context.Context, step *models.Step, ticket *models.Ticket) ([]*models.User, error) {
	return nil, nil
}
