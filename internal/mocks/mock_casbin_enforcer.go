package mocks

import "github.com/ST10067544-Thato/Gift-Card-System/domain"

// MockCasbinEnforcer implements the CasbinEnforcer interface for testing
type MockCasbinEnforcer struct {
	AddPolicyFunc func(params ...interface{}) (bool, error)
	EnforceFunc   func(rvals ...interface{}) (bool, error)
	GetPolicyFunc func() ([][]string, error)
	policies      [][]string
}

// Compile-time interface compliance verification
var _ domain.CasbinEnforcer = (*MockCasbinEnforcer)(nil)

// NewMockCasbinEnforcer creates a new MockCasbinEnforcer with an empty policy table
func NewMockCasbinEnforcer() *MockCasbinEnforcer {
	return &MockCasbinEnforcer{}
}

// AddPolicy adds a new policy rule
func (m *MockCasbinEnforcer) AddPolicy(params ...interface{}) (bool, error) {
	if m.AddPolicyFunc != nil {
		return m.AddPolicyFunc(params...)
	}

	// Default behavior: add to internal policies list unless already present
	policy := toStrings(params)
	if m.has(policy) {
		return false, nil
	}
	m.policies = append(m.policies, policy)
	return true, nil
}

// Enforce checks if a request is allowed
func (m *MockCasbinEnforcer) Enforce(rvals ...interface{}) (bool, error) {
	if m.EnforceFunc != nil {
		return m.EnforceFunc(rvals...)
	}
	// Default behavior: exact match against internal policies
	return m.has(toStrings(rvals)), nil
}

// GetPolicy returns all policy rules
func (m *MockCasbinEnforcer) GetPolicy() ([][]string, error) {
	if m.GetPolicyFunc != nil {
		return m.GetPolicyFunc()
	}
	result := make([][]string, len(m.policies))
	for i, p := range m.policies {
		result[i] = append([]string(nil), p...)
	}
	return result, nil
}

func (m *MockCasbinEnforcer) has(target []string) bool {
	for _, policy := range m.policies {
		if len(policy) != len(target) {
			continue
		}
		match := true
		for i := range policy {
			if policy[i] != target[i] {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

func toStrings(params []interface{}) []string {
	out := make([]string, len(params))
	for i, p := range params {
		if s, ok := p.(string); ok {
			out[i] = s
		}
	}
	return out
}
