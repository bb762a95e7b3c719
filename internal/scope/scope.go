// Package scope enforces organization ownership on records. Elevated roles
// see every organization; org_admin accounts are restricted to their own.
package scope

import (
	"fmt"

	"github.com/mfauzi77/paudhi-backend/internal/models"
	appErrors "github.com/mfauzi77/paudhi-backend/pkg/errors"
)

// Entity names an org-scoped record kind. The set is closed: callers pass a
// constant, never a client-supplied string.
type Entity string

const (
	EntityReport   Entity = "indicator_report"
	EntityNews     Entity = "news"
	EntityResource Entity = "learning_resource"
	EntityFAQ      Entity = "faq"
	EntityUser     Entity = "user"
)

// Valid reports whether the entity is part of the registry.
func (e Entity) Valid() bool {
	switch e {
	case EntityReport, EntityNews, EntityResource, EntityFAQ, EntityUser:
		return true
	default:
		return false
	}
}

// Owned is the minimal shape checked by bulk validation.
type Owned struct {
	ID    string
	OrgID string
}

// Filter returns the organization filter for list queries. Elevated roles get
// an empty filter; org_admin is pinned to their own organization. An
// org_admin row without an organization is a data fault and is rejected.
func Filter(user *models.User) (string, error) {
	if user == nil {
		return "", appErrors.ErrUnauthorized
	}
	if user.Role.Elevated() {
		return "", nil
	}
	if user.OrgID == nil || *user.OrgID == "" {
		return "", appErrors.Clone(appErrors.ErrForbidden, "account has no organization assigned")
	}
	return *user.OrgID, nil
}

// ResolveWriteOrg decides which organization a new record belongs to.
// Elevated users must name a catalogued organization. For org_admin the
// requested value is either empty (their own organization is injected) or
// must equal their own; anything else is a cross-organization attempt.
func ResolveWriteOrg(user *models.User, requested string) (string, string, error) {
	if user == nil {
		return "", "", appErrors.ErrUnauthorized
	}
	if user.Role.Elevated() {
		if !models.ValidOrgID(requested) {
			return "", "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown organization %q", requested))
		}
		return requested, models.OrgName(requested), nil
	}

	own, err := Filter(user)
	if err != nil {
		return "", "", err
	}
	if requested != "" && requested != own {
		return "", "", crossOrgError(requested, own)
	}
	return own, models.OrgName(own), nil
}

// ValidateRecordAccess checks that the actor may touch a single stored
// record. The record is loaded by the caller first, so a missing record
// surfaces as NotFound before any ownership detail is revealed.
func ValidateRecordAccess(user *models.User, entity Entity, recordOrgID string) error {
	if user == nil {
		return appErrors.ErrUnauthorized
	}
	if user.Role.Elevated() {
		return nil
	}
	own, err := Filter(user)
	if err != nil {
		return err
	}
	if recordOrgID != own {
		return appErrors.Clone(appErrors.ErrForbidden, fmt.Sprintf(
			"access denied: %s belongs to %s, your organization is %s", entity, recordOrgID, own))
	}
	return nil
}

// ValidateBulkAccess applies the ownership check per item. One foreign item
// anywhere rejects the whole batch before any mutation happens.
func ValidateBulkAccess(user *models.User, entity Entity, records []Owned) error {
	if user == nil {
		return appErrors.ErrUnauthorized
	}
	if user.Role.Elevated() {
		return nil
	}
	own, err := Filter(user)
	if err != nil {
		return err
	}
	for _, rec := range records {
		if rec.OrgID != own {
			return appErrors.Clone(appErrors.ErrForbidden, fmt.Sprintf(
				"access denied: %s %s belongs to %s, your organization is %s", entity, rec.ID, rec.OrgID, own))
		}
	}
	return nil
}

func crossOrgError(requested, own string) *appErrors.Error {
	return appErrors.Clone(appErrors.ErrForbidden, fmt.Sprintf(
		"cross-organization access denied: requested %s, your organization is %s", requested, own))
}
