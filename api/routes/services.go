package routes

import (
	"fmt"

	"github.com/bwmarrin/snowflake"

	"karaoke/internal/notifications"
	"karaoke/internal/session"
	"karaoke/internal/shared/config"
	"karaoke/internal/shared/database"
	"karaoke/internal/venues"
	"karaoke/pkg/cache"
	"karaoke/pkg/logger"
)

// NewVenueStore picks where venue state is persisted. Remote mode writes
// PostgreSQL with a local mirror for outages, behind a Redis read cache
// when Redis is up.
func NewVenueStore(cfg *config.Config, db *database.DB, log *logger.Logger) (venues.Store, error) {
	local, err := venues.NewLocalStore(cfg.Storage.LocalStateDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open local state dir: %w", err)
	}
	if cfg.IsLocalMode() {
		return local, nil
	}
	if db.PostgreSQL == nil {
		return nil, fmt.Errorf("remote storage mode requires PostgreSQL")
	}

	var store venues.Store = venues.NewMirroredStore(venues.NewPostgresRepository(db.PostgreSQL), local, log)
	if db.Redis != nil {
		store = venues.NewCachedRepository(store, cache.NewService(db.Redis, log), cfg.Redis.SnapshotTTL, log)
	}
	return store, nil
}

// NewEventForwarder connects the configured broker. It returns nil when
// EVENT_BROKER is "none".
func NewEventForwarder(cfg *config.Config, log *logger.Logger) (*notifications.Forwarder, error) {
	var (
		publisher notifications.Publisher
		err       error
	)
	switch cfg.Broker.Kind {
	case config.BrokerKafka:
		producerConfig := notifications.DefaultKafkaProducerConfig()
		producerConfig.Brokers = cfg.Broker.KafkaBrokers
		producerConfig.Topic = cfg.Broker.Topic
		publisher, err = notifications.NewKafkaPublisher(producerConfig, log)
	case config.BrokerRabbitMQ:
		publisher, err = notifications.NewAMQPPublisher(cfg.Broker.RabbitMQURL, cfg.Broker.Exchange, log)
	default:
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return notifications.NewForwarder(publisher, notifications.DefaultForwarderConfig(), log), nil
}

// NewVenueManager builds the session manager shared by every handler
func NewVenueManager(cfg *config.Config, store venues.Store, observer session.Observer, log *logger.Logger) (*venues.Manager, error) {
	node, err := snowflake.NewNode(cfg.NodeID)
	if err != nil {
		return nil, fmt.Errorf("invalid NODE_ID %d: %w", cfg.NodeID, err)
	}

	return venues.NewManager(venues.ManagerConfig{
		Store:       store,
		Observer:    observer,
		IDs:         node,
		Logger:      log,
		UnitPrice:   cfg.Venue.SongUnitPrice,
		SaveEvery:   cfg.Venue.SaveEverySeconds,
		IdleTimeout: cfg.Venue.IdleTimeout,
	}), nil
}
