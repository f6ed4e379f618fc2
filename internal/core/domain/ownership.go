package domain

// Owned is any mutable resource that records the user who created it.
type Owned interface {
	OwnerID() string
}

// Authorize permits a mutation only when requesterID equals the owner id of
// an already-loaded resource. Callers must load the resource first so a
// missing record surfaces as not-found rather than forbidden.
func Authorize(requesterID string, resource Owned) error {
	if requesterID == "" {
		return ErrMissingToken
	}
	// A nil or ownerless resource was never loaded.
	if resource == nil || resource.OwnerID() == "" {
		return ErrNotFound
	}
	if resource.OwnerID() != requesterID {
		return ErrForbidden
	}
	return nil
}
