package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/wolfeidau/authsync/internal/events"
	"github.com/wolfeidau/authsync/internal/identity"
	"github.com/wolfeidau/authsync/internal/logger"
	"github.com/wolfeidau/authsync/internal/models"
	"github.com/wolfeidau/authsync/internal/provision"
	"github.com/wolfeidau/authsync/internal/store"
	"github.com/wolfeidau/authsync/internal/store/postgres"
)

// Fixture is the YAML input to the apply command: seed accounts plus the
// change batches to run through the engine.
type Fixture struct {
	Accounts []FixtureAccount `yaml:"accounts"`
	Batches  []FixtureBatch   `yaml:"batches"`
}

type FixtureAccount struct {
	Name       string             `yaml:"name"`
	Kind       string             `yaml:"kind"`
	Attributes []FixtureAttribute `yaml:"attributes"`
}

type FixtureAttribute struct {
	Name   string   `yaml:"name"`
	Values []string `yaml:"values"`
	Multi  bool     `yaml:"multi"`
}

type FixtureBatch struct {
	AccountPath   string                `yaml:"accountPath"`
	Name          string                `yaml:"name"`
	Actor         string                `yaml:"actor"`
	Modifications []FixtureModification `yaml:"modifications"`
}

type FixtureModification struct {
	Type        string `yaml:"type"`
	Source      string `yaml:"source"`
	Destination string `yaml:"destination"`
}

type ApplyCmd struct {
	Fixture string `arg:"" help:"YAML fixture with accounts and change batches"`
	DB      string `help:"PostgreSQL connection string; uses the in-memory store when unset" env:"AUTHSYNC_DB"`
	Migrate bool   `help:"Run schema migrations before applying" default:"true"`
}

func (a *ApplyCmd) Run(ctx context.Context, globals *Globals) error {
	log.Logger = logger.Setup(globals.Debug)

	fixture, err := loadFixture(a.Fixture)
	if err != nil {
		return fmt.Errorf("failed to load fixture: %w", err)
	}

	contentStore, cleanup, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	resolver := identity.NewMemoryResolver()
	for _, fa := range fixture.Accounts {
		account := identity.NewAccount(fa.Name, identity.Kind(fa.Kind))
		for _, attr := range fa.Attributes {
			account.SetAttribute(identity.Attribute{Name: attr.Name, Values: attr.Values, Multi: attr.Multi})
		}
		resolver.Add(account)
	}

	coordinator := provision.New(contentStore, resolver, &events.LogSink{})

	for i, fb := range fixture.Batches {
		batch := models.ChangeBatch{
			AccountPath: fb.AccountPath,
			Name:        fb.Name,
			Actor:       fb.Actor,
		}
		for _, fm := range fb.Modifications {
			batch.Modifications = append(batch.Modifications, models.Modification{
				Type:        models.ModificationType(fm.Type),
				Source:      fm.Source,
				Destination: fm.Destination,
			})
		}

		outcome := coordinator.HandleChangeBatch(ctx, batch)
		log.Info().
			Int("batch", i).
			Str("account_path", batch.AccountPath).
			Bool("provisioned", outcome.Provisioned).
			Bool("skipped", outcome.Skipped).
			Int("applied", len(outcome.Applied)).
			Int("events", outcome.EventsEmitted).
			Int("faults", len(outcome.Faults)).
			Msg("Handled change batch")
		for _, fault := range outcome.Faults {
			log.Warn().Err(fault).Int("batch", i).Msg("Contained fault")
		}
	}

	return nil
}

// openStore returns the configured content store and a cleanup func. The
// postgres connection is retried with exponential backoff since the apply
// command is often raced against a database coming up.
func (a *ApplyCmd) openStore(ctx context.Context) (store.ContentStore, func(), error) {
	if a.DB == "" {
		return store.NewMemoryContentStore(), func() {}, nil
	}

	pgStore, err := backoff.Retry(ctx, func() (*postgres.ContentStore, error) {
		return postgres.NewContentStore(ctx, &postgres.Config{
			PoolConfig:  postgres.PoolConfig{ConnString: a.DB},
			AutoMigrate: a.Migrate,
		})
	},
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxElapsedTime(30*time.Second),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return pgStore, pgStore.Close, nil
}

func loadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var fixture Fixture
	if err := yaml.Unmarshal(data, &fixture); err != nil {
		return nil, err
	}
	return &fixture, nil
}
