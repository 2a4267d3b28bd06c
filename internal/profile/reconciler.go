package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/authsync/internal/identity"
	"github.com/wolfeidau/authsync/internal/models"
	"github.com/wolfeidau/authsync/internal/paths"
	"github.com/wolfeidau/authsync/internal/store"
)

// AppliedOp identifies one kind of change the reconciler applied.
type AppliedOp string

const (
	AppliedUpsert        AppliedOp = "upsert"
	AppliedDelete        AppliedOp = "delete"
	AppliedRemoveProfile AppliedOp = "remove-profile"
)

// Applied records one change applied to a profile node, in application
// order.
type Applied struct {
	Op   AppliedOp
	Name string
	Path string
}

// Reconciler computes and applies the property changes needed to bring a
// profile node in sync with its account's attributes.
type Reconciler struct {
	store store.ContentStore
}

// NewReconciler creates a reconciler over the given store.
func NewReconciler(contentStore store.ContentStore) *Reconciler {
	return &Reconciler{store: contentStore}
}

// Reconcile applies the batch's property deletions and then replicates the
// account's replicable attributes onto the profile node.
//
// A DELETE modification whose path ends with the principal name is the
// whole-account deletion signal: the profile node is removed and the upsert
// pass is skipped. Any other DELETE targets a single property, named by the
// final path segment.
//
// The first failing write aborts the pass and propagates; changes already
// applied are not rolled back.
func (r *Reconciler) Reconcile(ctx context.Context, account *identity.Account, profilePath string, batch models.ChangeBatch) ([]Applied, error) {
	var applied []Applied

	profileRemoved := false
	for _, m := range batch.Modifications {
		if m.Type != models.ModificationDelete {
			continue
		}

		dest := m.Path()
		if strings.HasSuffix(dest, account.Name) {
			if err := r.removeProfile(ctx, profilePath); err != nil {
				return applied, err
			}
			applied = append(applied, Applied{Op: AppliedRemoveProfile, Path: profilePath})
			profileRemoved = true
			continue
		}

		if profileRemoved {
			continue
		}

		propertyName := paths.LastSegment(dest)
		removed, err := r.removeExistingProperty(ctx, profilePath, propertyName)
		if err != nil {
			return applied, err
		}
		if removed {
			applied = append(applied, Applied{Op: AppliedDelete, Name: propertyName, Path: profilePath})
		}
	}

	if profileRemoved {
		return applied, nil
	}

	// The declared private set is read fresh for every pass.
	declared, err := LoadPrivateSet(ctx, r.store, profilePath)
	if err != nil {
		return applied, fmt.Errorf("failed to load private property set: %w", err)
	}

	// Stamp the owning principal once. This is the one internal-prefixed
	// property replicated onto the profile.
	stamped, err := r.stampPrincipal(ctx, profilePath, account.Name)
	if err != nil {
		return applied, err
	}
	if stamped {
		applied = append(applied, Applied{Op: AppliedUpsert, Name: PrincipalProperty, Path: profilePath})
	}

	for _, name := range account.AttributeNames() {
		if IsInternalName(name) {
			log.Debug().Str("attribute", name).Msg("Not replicating internal attribute")
			continue
		}
		if IsPrivate(name, declared) {
			continue
		}

		skip, err := r.isProtected(ctx, profilePath, name)
		if err != nil {
			return applied, err
		}
		if skip {
			continue
		}

		attr, _ := account.Attribute(name)
		prop := store.Property{Name: name, Values: attr.Values, Multi: attr.Multi}
		if err := r.store.SetProperty(ctx, profilePath, prop); err != nil {
			return applied, fmt.Errorf("failed to replicate attribute %s: %w", name, err)
		}
		applied = append(applied, Applied{Op: AppliedUpsert, Name: name, Path: profilePath})
	}

	return applied, nil
}

func (r *Reconciler) removeProfile(ctx context.Context, profilePath string) error {
	err := r.store.RemoveNode(ctx, profilePath)
	if err != nil && !errors.Is(err, store.ErrNodeNotFound) {
		return fmt.Errorf("failed to remove profile node: %w", err)
	}
	return nil
}

func (r *Reconciler) removeExistingProperty(ctx context.Context, profilePath, name string) (bool, error) {
	_, err := r.store.GetProperty(ctx, profilePath, name)
	if err != nil {
		if errors.Is(err, store.ErrPropertyNotFound) {
			return false, nil
		}
		return false, err
	}

	if err := r.store.RemoveProperty(ctx, profilePath, name); err != nil {
		return false, fmt.Errorf("failed to remove property %s: %w", name, err)
	}
	return true, nil
}

func (r *Reconciler) stampPrincipal(ctx context.Context, profilePath, principalName string) (bool, error) {
	_, err := r.store.GetProperty(ctx, profilePath, PrincipalProperty)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, store.ErrPropertyNotFound) {
		return false, err
	}

	if err := r.store.SetProperty(ctx, profilePath, store.Scalar(PrincipalProperty, principalName)); err != nil {
		return false, fmt.Errorf("failed to stamp principal: %w", err)
	}
	return true, nil
}

func (r *Reconciler) isProtected(ctx context.Context, profilePath, name string) (bool, error) {
	existing, err := r.store.GetProperty(ctx, profilePath, name)
	if err != nil {
		if errors.Is(err, store.ErrPropertyNotFound) {
			return false, nil
		}
		return false, err
	}
	return existing.Protected, nil
}
