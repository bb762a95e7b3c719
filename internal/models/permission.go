package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Module names gate-able feature areas.
type Module string

const (
	ModuleReports   Module = "indicatorReports"
	ModuleNews      Module = "news"
	ModuleResources Module = "learningResources"
	ModuleFAQ       Module = "faq"
	ModuleUsers     Module = "users"
)

// Modules lists every permission-gated module.
var Modules = []Module{ModuleReports, ModuleNews, ModuleResources, ModuleFAQ, ModuleUsers}

// Action names a CRUD operation within a module.
type Action string

const (
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// PermissionGrant holds the four CRUD flags for one module.
type PermissionGrant struct {
	Create bool `json:"create"`
	Read   bool `json:"read"`
	Update bool `json:"update"`
	Delete bool `json:"delete"`
}

// Allows reports whether the grant covers the action.
func (g PermissionGrant) Allows(action Action) bool {
	switch action {
	case ActionCreate:
		return g.Create
	case ActionRead:
		return g.Read
	case ActionUpdate:
		return g.Update
	case ActionDelete:
		return g.Delete
	default:
		return false
	}
}

// PermissionSet maps every module to its grant. The canonical stored shape is
// a JSONB object keyed by module name; rows written by the legacy system may
// still hold a list of {module, actions[]} entries, which Scan normalises.
type PermissionSet map[Module]PermissionGrant

// legacyPermissionEntry is the pre-migration list element shape.
type legacyPermissionEntry struct {
	Module  string   `json:"module"`
	Actions []string `json:"actions"`
}

// Value implements driver.Valuer, always emitting the canonical map shape.
func (p PermissionSet) Value() (driver.Value, error) {
	if p == nil {
		p = PermissionSet{}
	}
	return json.Marshal(p.Normalized())
}

// Scan implements sql.Scanner. It accepts the canonical map shape and the
// legacy array shape, converting the latter in place so the legacy form never
// propagates past the store boundary.
func (p *PermissionSet) Scan(src interface{}) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*p = defaultGrants(false)
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("unsupported permissions column type %T", src)
	}

	var canonical map[Module]PermissionGrant
	if err := json.Unmarshal(raw, &canonical); err == nil {
		*p = PermissionSet(canonical).Normalized()
		return nil
	}

	var legacy []legacyPermissionEntry
	if err := json.Unmarshal(raw, &legacy); err != nil {
		return fmt.Errorf("decode permissions column: %w", err)
	}

	set := defaultGrants(false)
	for _, entry := range legacy {
		grant := PermissionGrant{}
		for _, action := range entry.Actions {
			switch Action(action) {
			case ActionCreate:
				grant.Create = true
			case ActionRead:
				grant.Read = true
			case ActionUpdate:
				grant.Update = true
			case ActionDelete:
				grant.Delete = true
			}
		}
		set[Module(entry.Module)] = grant
	}
	*p = set.Normalized()
	return nil
}

// Normalized returns a copy populated over all known modules. Idempotent.
func (p PermissionSet) Normalized() PermissionSet {
	out := make(PermissionSet, len(Modules))
	for _, module := range Modules {
		out[module] = p[module]
	}
	return out
}

// Allows reports whether the set grants the action on the module.
func (p PermissionSet) Allows(module Module, action Action) bool {
	grant, ok := p[module]
	if !ok {
		return false
	}
	return grant.Allows(action)
}

// DefaultPermissions returns the role's initial grants. Content modules are
// writable by every role; the users module stays closed below super_admin.
func DefaultPermissions(role UserRole) PermissionSet {
	set := defaultGrants(true)
	if role == RoleSuperAdmin {
		set[ModuleUsers] = PermissionGrant{Create: true, Read: true, Update: true, Delete: true}
	} else {
		set[ModuleUsers] = PermissionGrant{}
	}
	return set
}

func defaultGrants(open bool) PermissionSet {
	set := make(PermissionSet, len(Modules))
	for _, module := range Modules {
		if open && module != ModuleUsers {
			set[module] = PermissionGrant{Create: true, Read: true, Update: true, Delete: true}
		} else {
			set[module] = PermissionGrant{}
		}
	}
	return set
}
