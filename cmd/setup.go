package cmd

import (
	"context"
	"fmt"

	"github.com/groupmail/groupmail-services/db"
	awsclient "github.com/groupmail/groupmail-services/internal/aws"
	"github.com/groupmail/groupmail-services/internal/appconfig"
	"github.com/groupmail/groupmail-services/internal/events"
	"github.com/groupmail/groupmail-services/internal/mailman"
	"github.com/groupmail/groupmail-services/internal/notify"
	identity "github.com/groupmail/groupmail-services/internal/services"
	"github.com/groupmail/groupmail-services/internal/tokens"
	"github.com/rs/zerolog/log"
)

var (
	appCfg     *appconfig.Config
	identityDB *db.IdentityDB
)

// commonSetUp sets the log level, loads the config and opens the database.
func commonSetUp() {
	setLogging(logLevel)

	var err error
	appCfg, err = appconfig.LoadConfig(configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	logger := log.With().Str("component", "db").Logger()
	identityDB, err = db.NewIdentityDB(appCfg.Database.Driver, appCfg.Database.Source, &logger)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize IdentityDB")
	}
}

// newIdentityService wires the identity service to its collaborators. The
// returned publisher must be closed by the caller.
func newIdentityService(ctx context.Context) (*identity.Service, events.Notifier, error) {
	logger := log.With().Str("component", "identity").Logger()

	ttl, err := appCfg.TokenTTL()
	if err != nil {
		return nil, nil, err
	}
	secret, err := tokenSecret(ctx)
	if err != nil {
		return nil, nil, err
	}
	gen, err := tokens.NewGenerator(secret, ttl)
	if err != nil {
		return nil, nil, err
	}

	timeout, err := appCfg.MailmanTimeout()
	if err != nil {
		return nil, nil, err
	}

	notifier, err := newNotifier(ctx)
	if err != nil {
		return nil, nil, err
	}

	var publisher events.Notifier = events.Discard{}
	if appCfg.Pulsar.URL != "" {
		publisherLog := log.With().Str("component", "events").Logger()
		publisher, err = events.NewEventPublisher(appCfg.Pulsar.URL, appCfg.Pulsar.TopicProducer, &publisherLog)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize event publisher: %w", err)
		}
	} else {
		log.Warn().Msg("No Pulsar URL configured, events will be discarded")
	}

	return &identity.Service{
		Store:    identityDB,
		Lists:    mailman.NewClient(appCfg.Mailman.URL, appCfg.Mailman.Token, timeout),
		Notifier: notifier,
		Tokens:   gen,
		Events:   publisher,
		Log:      &logger,
		Options:  identity.Options{ModifyMailingLists: appCfg.Mailman.ModifyLists},
	}, publisher, nil
}

func tokenSecret(ctx context.Context) (string, error) {
	if appCfg.Tokens.Secret != "" {
		return appCfg.Tokens.Secret, nil
	}
	if appCfg.Tokens.SecretID == "" {
		return "", fmt.Errorf("tokens.secret or tokens.secretId must be set")
	}

	cfg, err := awsclient.LoadAWSConfig(ctx, appCfg.AWS.Region)
	if err != nil {
		return "", err
	}
	return awsclient.GetSecretString(ctx, awsclient.NewSecretsManagerClient(cfg), appCfg.Tokens.SecretID)
}

func newNotifier(ctx context.Context) (identity.Notifier, error) {
	logger := log.With().Str("component", "notify").Logger()
	if !appCfg.Notifications.Enabled {
		return &notify.LogNotifier{Log: &logger}, nil
	}

	cfg, err := awsclient.LoadAWSConfig(ctx, appCfg.AWS.Region)
	if err != nil {
		return nil, err
	}
	return &notify.SESNotifier{
		Client:  awsclient.NewSESClient(cfg),
		From:    appCfg.Notifications.From,
		BaseURL: appCfg.Notifications.BaseURL,
		Log:     &logger,
	}, nil
}
