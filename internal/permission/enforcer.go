package permission

import (
	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
)

// Role tier only. Overrides are resolved before the enforcer is consulted.
const enforcerModel = `
[request_definition]
r = sub, obj

[policy_definition]
p = sub, obj

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && r.obj == p.obj
`

func NewEnforcer() (*casbin.Enforcer, error) {
	m, err := model.NewModelFromString(enforcerModel)
	if err != nil {
		return nil, err
	}
	return casbin.NewEnforcer(m)
}
