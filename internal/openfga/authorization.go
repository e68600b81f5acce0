package openfga

import (
	"context"

	"github.com/google/uuid"
)

// AuthorizationService exposes the organisation-level relations used by the
// HTTP layer.
type AuthorizationService struct {
	client *Client
}

func NewAuthorizationService(client *Client) *AuthorizationService {
	return &AuthorizationService{client: client}
}

// CanAccessOrganisation reports whether the account is a member of the organisation.
func (s *AuthorizationService) CanAccessOrganisation(ctx context.Context, accountID, organisationID uuid.UUID) (bool, error) {
	return s.client.CheckPermission(ctx, accountID.String(), "member", "organisation", organisationID.String())
}

// CanAdministerOrganisation reports whether the account may manage the
// organisation's membership and billing.
func (s *AuthorizationService) CanAdministerOrganisation(ctx context.Context, accountID, organisationID uuid.UUID) (bool, error) {
	return s.client.CheckPermission(ctx, accountID.String(), "admin", "organisation", organisationID.String())
}

// GrantMembership records the account as a member of the organisation.
func (s *AuthorizationService) GrantMembership(ctx context.Context, accountID, organisationID uuid.UUID) error {
	return s.client.WriteTuple(ctx, accountID.String(), "member", "organisation", organisationID.String())
}

// RevokeMembership removes the account's membership relation.
func (s *AuthorizationService) RevokeMembership(ctx context.Context, accountID, organisationID uuid.UUID) error {
	return s.client.DeleteTuple(ctx, accountID.String(), "member", "organisation", organisationID.String())
}
