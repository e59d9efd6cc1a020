package auth

import (
	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
)

// roleGateModel grants a subject (role) access to an object (gate name)
const roleGateModel = `
[request_definition]
r = sub, obj

[policy_definition]
p = sub, obj

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = r.sub == p.sub && r.obj == p.obj
`

type CasbinService struct{ E *casbin.SyncedEnforcer }

// NewCasbinService builds an in-memory enforcer. Policies are registered by
// the role gate while routes are built, so nothing is loaded from storage.
func NewCasbinService() (*CasbinService, error) {
	m, err := model.NewModelFromString(roleGateModel)
	if err != nil {
		return nil, err
	}
	E, err := casbin.NewSyncedEnforcer(m)
	if err != nil {
		return nil, err
	}
	return &CasbinService{E}, nil
}
