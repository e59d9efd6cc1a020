package services

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ST10067544-Thato/Gift-Card-System/domain"
	"github.com/casbin/casbin/v2"
)

// GateName derives a stable gate identifier from a role set
func GateName(roles ...domain.Role) string {
	names := make([]string, 0, len(roles))
	for _, r := range roles {
		names = append(names, string(r))
	}
	sort.Strings(names)
	return "gate:" + strings.Join(names, "+")
}

// CasbinEnforcerWrapper wraps the real Casbin enforcer to implement our interface
type CasbinEnforcerWrapper struct {
	enforcer *casbin.SyncedEnforcer
}

// NewCasbinEnforcerWrapper creates a wrapper for the real Casbin enforcer
func NewCasbinEnforcerWrapper(enforcer *casbin.SyncedEnforcer) domain.CasbinEnforcer {
	return &CasbinEnforcerWrapper{enforcer: enforcer}
}

func (w *CasbinEnforcerWrapper) AddPolicy(params ...interface{}) (bool, error) {
	return w.enforcer.AddPolicy(params...)
}

func (w *CasbinEnforcerWrapper) Enforce(rvals ...interface{}) (bool, error) {
	return w.enforcer.Enforce(rvals...)
}

func (w *CasbinEnforcerWrapper) GetPolicy() ([][]string, error) {
	return w.enforcer.GetPolicy()
}

// PolicyServiceImpl implements domain.PolicyService using Casbin
type PolicyServiceImpl struct {
	enforcer domain.CasbinEnforcer
}

// NewPolicyService creates a new policy service
func NewPolicyService(enforcer *casbin.SyncedEnforcer) domain.PolicyService {
	return &PolicyServiceImpl{
		enforcer: NewCasbinEnforcerWrapper(enforcer),
	}
}

// NewPolicyServiceWithEnforcer creates a new policy service with a CasbinEnforcer interface (for testing)
func NewPolicyServiceWithEnforcer(enforcer domain.CasbinEnforcer) domain.PolicyService {
	return &PolicyServiceImpl{
		enforcer: enforcer,
	}
}

// AllowRoles implements domain.PolicyService. Re-adding an existing policy is a no-op.
func (p *PolicyServiceImpl) AllowRoles(gate string, roles ...domain.Role) error {
	if len(roles) == 0 {
		return fmt.Errorf("gate %s: at least one role is required", gate)
	}
	for _, role := range roles {
		if !role.Valid() {
			return fmt.Errorf("gate %s: unknown role %q", gate, role)
		}
		if _, err := p.enforcer.AddPolicy(string(role), gate); err != nil {
			return fmt.Errorf("gate %s: add policy for %s: %w", gate, role, err)
		}
	}
	return nil
}

// CheckPermission implements domain.PolicyService
func (p *PolicyServiceImpl) CheckPermission(role domain.Role, gate string) (bool, error) {
	return p.enforcer.Enforce(string(role), gate)
}

// GetPolicies implements domain.PolicyService
func (p *PolicyServiceImpl) GetPolicies() [][]string {
	policies, _ := p.enforcer.GetPolicy()
	return policies
}
