package app

import (
	"context"
	"fmt"
	"log"

	authdomain "timesync-backend/internal/auth/domain"
	authrepo "timesync-backend/internal/auth/repository"
	"timesync-backend/internal/events"
	"timesync-backend/internal/session"
	taskrepo "timesync-backend/internal/task/repository"
	"timesync-backend/internal/task/scheduler"
	"timesync-backend/pkg/config"
	"timesync-backend/pkg/database"
	"timesync-backend/pkg/fcm"
	fbpkg "timesync-backend/pkg/firebase"
	"timesync-backend/pkg/identity"

	"cloud.google.com/go/pubsub"
	"gorm.io/gorm"
)

// App holds the stores and clients shared by the server and the CLI
type App struct {
	Config    *config.Config
	DB        *gorm.DB
	Store     taskrepo.Store
	Profiles  authrepo.ProfileRepository
	Tokens    authrepo.RefreshTokenRepository
	FCMTokens authrepo.FCMTokenRepository
	Identity  *identity.Client
	Sessions  *session.Provider
	Publisher events.Publisher

	// FCM is nil when push delivery is unavailable
	FCM *fcm.Client

	firebase   *fbpkg.Clients
	pubsub     *pubsub.Client
	subscriber *events.Subscriber
}

// New opens every backing service selected by cfg
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{Config: cfg, Sessions: session.NewProvider()}

	db, err := database.NewConnection(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := db.AutoMigrate(&authdomain.RefreshToken{}, &authdomain.FCMToken{}); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	a.DB = db
	a.Tokens = authrepo.NewRefreshTokenRepository(db)
	a.FCMTokens = authrepo.NewFCMTokenRepository(db)

	switch cfg.StoreDriver {
	case "memory":
		log.Println("[App] Using in-memory document store")
		a.Store = taskrepo.NewMemoryStore()
		a.Profiles = authrepo.NewMemoryProfileRepository()
		a.Identity = identity.NewClient(nil, cfg.FirebaseWebAPIKey, cfg.IdentityToolkitURL)
	case "firestore", "":
		clients, err := fbpkg.NewClients(ctx, cfg)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.firebase = clients
		a.Store = taskrepo.NewFirestoreStore(clients.Firestore)
		a.Profiles = authrepo.NewFirestoreProfileRepository(clients.Firestore)
		a.Identity = identity.NewClient(clients.Auth, cfg.FirebaseWebAPIKey, cfg.IdentityToolkitURL)

		fcmClient, err := fcm.NewClient(ctx, clients.App)
		if err != nil {
			log.Printf("[WARN] Failed to initialize FCM client (push notifications disabled): %v", err)
		} else {
			a.FCM = fcmClient
		}
	default:
		a.Close()
		return nil, fmt.Errorf("unsupported STORE_DRIVER %q", cfg.StoreDriver)
	}

	applier := events.NewApplier(a.Store, cfg.Location())
	if cfg.GoogleProjectID == "" {
		log.Println("[WARN] GoogleProjectID not configured, applying task events in process")
		a.Publisher = events.NewDirectPublisher(applier)
		return a, nil
	}

	client, err := events.NewPubSubClient(ctx, cfg.GoogleProjectID, cfg.GoogleCredentials)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.pubsub = client
	a.Publisher = events.NewPubSubPublisher(client, cfg.PubSubTopic)
	a.subscriber = events.NewSubscriber(client, cfg.PubSubTopic, applier)
	log.Printf("[App] Task events go through Pub/Sub topic %s", events.TopicName(cfg.PubSubTopic))
	return a, nil
}

// StartSubscriber receives task events until ctx is cancelled. It is a
// no-op when events are applied in process.
func (a *App) StartSubscriber(ctx context.Context) {
	if a.subscriber == nil {
		return
	}
	go a.subscriber.Start(ctx)
}

// NewReminderScheduler builds the dispatcher. It stays disabled without an
// FCM client.
func (a *App) NewReminderScheduler() *scheduler.TaskReminderScheduler {
	var sender scheduler.Sender
	if a.FCM != nil {
		sender = a.FCM
	}
	return scheduler.NewTaskReminderScheduler(a.Store, a.FCMTokens, sender, a.Config.ReminderInterval, a.Config.Location())
}

func (a *App) Close() {
	if p, ok := a.Publisher.(*events.PubSubPublisher); ok {
		p.Stop()
	}
	if a.pubsub != nil {
		if err := a.pubsub.Close(); err != nil {
			log.Printf("[App] Closing pubsub client: %v", err)
		}
	}
	if err := a.firebase.Close(); err != nil {
		log.Printf("[App] Closing firestore client: %v", err)
	}
	if a.DB != nil {
		if sqlDB, err := a.DB.DB(); err == nil {
			sqlDB.Close()
		}
	}
}
