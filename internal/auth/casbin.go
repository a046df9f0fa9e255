package auth

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
)

//go:embed model.conf
var casbinModelContent string

//go:embed policy.csv
var casbinPolicyContent string

// Authorizer decides whether a role may call a route.
type Authorizer struct {
	enforcer *casbin.SyncedEnforcer
}

// NewAuthorizer creates an enforcer with the embedded model and route policy.
// Policies are static; a user's role comes from the users table.
func NewAuthorizer() (*Authorizer, error) {
	m, err := model.NewModelFromString(casbinModelContent)
	if err != nil {
		return nil, fmt.Errorf("parse casbin model: %w", err)
	}

	enforcer, err := casbin.NewSyncedEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("create casbin enforcer: %w", err)
	}

	policies, groupings, err := parsePolicy(casbinPolicyContent)
	if err != nil {
		return nil, err
	}
	if _, err := enforcer.AddPolicies(policies); err != nil {
		return nil, fmt.Errorf("load casbin policies: %w", err)
	}
	if _, err := enforcer.AddGroupingPolicies(groupings); err != nil {
		return nil, fmt.Errorf("load casbin role links: %w", err)
	}

	return &Authorizer{enforcer: enforcer}, nil
}

// Authorize reports whether role may perform method on path.
func (a *Authorizer) Authorize(role, path, method string) (bool, error) {
	if role == "" {
		return false, nil
	}
	return a.enforcer.Enforce(role, path, method)
}

func parsePolicy(content string) (policies, groupings [][]string, err error) {
	for i, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Split(line, ",")
		for j := range fields {
			fields[j] = strings.TrimSpace(fields[j])
		}
		switch {
		case fields[0] == "p" && len(fields) == 4:
			policies = append(policies, fields[1:])
		case fields[0] == "g" && len(fields) == 3:
			groupings = append(groupings, fields[1:])
		default:
			return nil, nil, fmt.Errorf("policy.csv line %d: unrecognised rule %q", i+1, line)
		}
	}
	return policies, groupings, nil
}
