// Package provision orchestrates account provisioning: private space and
// profile creation, access grants, property reconciliation and domain
// event emission, one change batch at a time.
package provision

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/authsync/internal/acl"
	"github.com/wolfeidau/authsync/internal/events"
	"github.com/wolfeidau/authsync/internal/identity"
	"github.com/wolfeidau/authsync/internal/models"
	"github.com/wolfeidau/authsync/internal/paths"
	"github.com/wolfeidau/authsync/internal/profile"
	"github.com/wolfeidau/authsync/internal/store"
	"github.com/wolfeidau/authsync/internal/telemetry"
)

// Outcome reports what one change batch produced. Faults are contained
// here rather than raised: the operation that triggered the batch has
// already committed, so no fault from provisioning may propagate to it.
type Outcome struct {
	// Provisioned is true when the full provisioning sequence (private
	// space, profile, reconciliation) completed without fault.
	Provisioned bool

	// Skipped is true when the batch's account path did not address an
	// account (unknown path shape or ambiguous prefixed remainder) and the
	// batch was dropped without provisioning or events.
	Skipped bool

	// Applied lists the profile property changes the reconciler made, in
	// application order.
	Applied []profile.Applied

	// EventsEmitted counts events delivered to the sink.
	EventsEmitted int

	// Faults collects every contained fault, provisioning and eventing
	// alike.
	Faults []error
}

// OK reports whether the batch was handled without any contained fault.
func (o Outcome) OK() bool {
	return len(o.Faults) == 0
}

// Coordinator handles account change batches. It holds no cross-batch
// mutable state; concurrent batches for distinct accounts are independent.
// Serialising batches for the same account is the caller's responsibility.
type Coordinator struct {
	store      store.ContentStore
	identity   identity.Resolver
	grants     *acl.GrantBuilder
	reconciler *profile.Reconciler
	classifier *events.Classifier
	sink       events.Sink
}

// New creates a coordinator. The event sink is injected here; there is no
// package-level binding.
func New(contentStore store.ContentStore, resolver identity.Resolver, sink events.Sink) *Coordinator {
	return &Coordinator{
		store:      contentStore,
		identity:   resolver,
		grants:     acl.NewGrantBuilder(contentStore),
		reconciler: profile.NewReconciler(contentStore),
		classifier: events.NewClassifier(),
		sink:       sink,
	}
}

// HandleChangeBatch processes one account change batch: it resolves the
// addressing mode, provisions storage for the account if it still exists,
// reconciles the profile, and emits domain events. It never returns an
// error; every fault is logged and collected into the outcome.
//
// Provisioning and eventing are independent: a provisioning fault does not
// suppress event delivery, and a deletion batch for an account that is
// already gone still produces its delete event.
func (c *Coordinator) HandleChangeBatch(ctx context.Context, batch models.ChangeBatch) Outcome {
	metrics := telemetry.GetMetrics()
	var outcome Outcome

	principalName, ok := resolveAddressing(batch)
	if !ok {
		// Deliberate containment, not an error: the path does not address
		// an account, so the batch produces nothing at all.
		log.Debug().
			Str("account_path", batch.AccountPath).
			Msg("Batch does not address an account, dropping")
		metrics.BatchesRejectedTotal.Add(ctx, 1)
		outcome.Skipped = true
		return outcome
	}

	metrics.BatchesHandledTotal.Add(ctx, 1)

	account, err := c.identity.Resolve(ctx, principalName)
	if err != nil {
		if errors.Is(err, identity.ErrAccountNotFound) {
			// The account is already gone. Skip provisioning but still
			// emit events below: a deletion batch must produce its event.
			log.Debug().
				Str("principal", principalName).
				Msg("Account not found, skipping provisioning")
		} else {
			fault := fmt.Errorf("failed to resolve account %s: %w", principalName, err)
			log.Error().Err(fault).Msg("Provisioning fault")
			metrics.ProvisionFaultsTotal.Add(ctx, 1)
			outcome.Faults = append(outcome.Faults, fault)
		}
		account = nil
	}

	if account != nil {
		applied, err := c.provisionAccount(ctx, account, batch)
		outcome.Applied = applied
		metrics.PropertiesReplicatedTotal.Add(ctx, int64(len(applied)))
		for _, a := range applied {
			if a.Op == profile.AppliedRemoveProfile {
				metrics.ProfilesRemovedTotal.Add(ctx, 1)
			}
		}
		if err != nil {
			log.Error().
				Err(err).
				Str("principal", principalName).
				Str("account_path", batch.AccountPath).
				Msg("Provisioning fault")
			metrics.ProvisionFaultsTotal.Add(ctx, 1)
			outcome.Faults = append(outcome.Faults, err)
		} else {
			outcome.Provisioned = true
		}
	}

	// Event emission is always attempted, whatever happened above.
	for _, event := range c.classifier.Classify(batch, principalName) {
		if err := c.sink.Publish(ctx, event); err != nil {
			fault := fmt.Errorf("failed to publish event %s: %w", event.ID, err)
			log.Warn().Err(fault).Msg("Event publish fault")
			metrics.EventPublishFailsTotal.Add(ctx, 1)
			outcome.Faults = append(outcome.Faults, fault)
			break
		}
		outcome.EventsEmitted++
		metrics.EventsEmittedTotal.Add(ctx, 1)
	}

	return outcome
}

// provisionAccount runs the storage side of a batch: private space,
// profile, reconciliation. The first fault aborts the remaining steps.
func (c *Coordinator) provisionAccount(ctx context.Context, account *identity.Account, batch models.ChangeBatch) ([]profile.Applied, error) {
	if err := c.ensurePrivateSpace(ctx, account); err != nil {
		return nil, err
	}

	profilePath, err := c.ensureProfile(ctx, account)
	if err != nil {
		return nil, err
	}

	applied, err := c.reconciler.Reconcile(ctx, account, profilePath, batch)
	if err != nil {
		return applied, fmt.Errorf("failed to reconcile profile for %s: %w", account.Name, err)
	}
	return applied, nil
}

// ensurePrivateSpace creates the account's owner-only subtree at most
// once. First creation stamps the owner and applies the grant rows,
// including the explicit denies for the universal principals.
func (c *Coordinator) ensurePrivateSpace(ctx context.Context, account *identity.Account) error {
	path := paths.PrivateSpace(account.Kind, account.Name)

	created, err := c.store.CreateIfAbsent(ctx, path)
	if err != nil {
		return fmt.Errorf("failed to create private space %s: %w", path, err)
	}
	if !created {
		return nil
	}

	if err := c.store.SetProperty(ctx, path, store.Scalar(profile.CreatedProperty, time.Now().UTC().Format(time.RFC3339))); err != nil {
		return fmt.Errorf("failed to stamp private space %s: %w", path, err)
	}
	if err := c.store.SetProperty(ctx, path, store.Scalar(profile.CreatedByProperty, account.Name)); err != nil {
		return fmt.Errorf("failed to stamp private space %s: %w", path, err)
	}

	if err := c.grants.Grant(ctx, path, account.Name, acl.OwnerCapabilities()...); err != nil {
		return err
	}
	// Explicitly deny anon and everyone, this is private space.
	if err := c.grants.Grant(ctx, path, acl.Anonymous, acl.ReadDenied, acl.WriteDenied); err != nil {
		return err
	}
	if err := c.grants.Grant(ctx, path, acl.Everyone, acl.ReadDenied, acl.WriteDenied); err != nil {
		return err
	}

	telemetry.GetMetrics().PrivateSpacesCreatedTotal.Add(ctx, 1)
	log.Info().Str("path", path).Str("principal", account.Name).Msg("Created private space")
	return nil
}

// ensureProfile creates the account's public profile node at most once and
// returns its path. First creation tags the resource type and grants the
// owner on the public home, so future public children share the rows.
func (c *Coordinator) ensureProfile(ctx context.Context, account *identity.Account) (string, error) {
	path := paths.Profile(account.Kind, account.Name)

	created, err := c.store.CreateIfAbsent(ctx, path)
	if err != nil {
		return "", fmt.Errorf("failed to create profile %s: %w", path, err)
	}
	if !created {
		return path, nil
	}

	resourceType := profile.UserProfileResourceType
	if account.IsGroup() {
		resourceType = profile.GroupProfileResourceType
	}
	if err := c.store.SetProperty(ctx, path, store.Scalar(profile.ResourceTypeProperty, resourceType)); err != nil {
		return "", fmt.Errorf("failed to tag profile %s: %w", path, err)
	}

	if err := c.grants.Grant(ctx, paths.PublicHome(account.Kind, account.Name), account.Name, acl.OwnerCapabilities()...); err != nil {
		return "", err
	}

	telemetry.GetMetrics().ProfilesCreatedTotal.Add(ctx, 1)
	log.Info().Str("path", path).Str("principal", account.Name).Msg("Created profile")
	return path, nil
}

// resolveAddressing maps the batch's account path onto one of the four
// recognised shapes and yields the principal it addresses. Collection-root
// shapes take the principal from the batch's node-name parameter. A
// prefixed remainder containing a path separator is ambiguous (likely a
// sub-resource) and does not address an account.
func resolveAddressing(batch models.ChangeBatch) (string, bool) {
	switch {
	case batch.AccountPath == paths.UserRoot, batch.AccountPath == paths.GroupRoot:
		return batch.Name, batch.Name != ""
	case strings.HasPrefix(batch.AccountPath, paths.UserPrefix):
		rest := strings.TrimPrefix(batch.AccountPath, paths.UserPrefix)
		if strings.Contains(rest, "/") {
			return "", false
		}
		return rest, rest != ""
	case strings.HasPrefix(batch.AccountPath, paths.GroupPrefix):
		rest := strings.TrimPrefix(batch.AccountPath, paths.GroupPrefix)
		if strings.Contains(rest, "/") {
			return "", false
		}
		return rest, rest != ""
	default:
		return "", false
	}
}
