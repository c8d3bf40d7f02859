//go:build integration

package main_test

import (
	"context"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	kafkamodule "github.com/testcontainers/testcontainers-go/modules/kafka"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/stayloop/service-booking/internal/application"
	"github.com/stayloop/service-booking/internal/domain/availability"
	"github.com/stayloop/service-booking/internal/domain/daterange"
	listingDomain "github.com/stayloop/service-booking/internal/domain/listing"
	userDomain "github.com/stayloop/service-booking/internal/domain/user"
	"github.com/stayloop/service-booking/internal/repository"
	"github.com/stayloop/service-booking/pkg/kafka"
)

// testInfra holds shared test infrastructure.
type testInfra struct {
	DB      *gorm.DB
	Cleanup func()
}

// setupPostgres starts a PostgreSQL testcontainer and returns a connected GORM DB.
func setupPostgres(t *testing.T) *testInfra {
	t.Helper()
	ctx := context.Background()

	pgReq := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "test_booking",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	pgContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: pgReq,
		Started:          true,
	})
	require.NoError(t, err, "failed to start PostgreSQL container")

	pgHost, err := pgContainer.Host(ctx)
	require.NoError(t, err)
	pgPort, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("host=%s port=%s user=test password=test dbname=test_booking sslmode=disable", pgHost, pgPort.Port())

	// Poll until GORM can actually connect and ping.
	var db *gorm.DB
	require.Eventually(t, func() bool {
		var err error
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
		if err != nil {
			return false
		}
		sqlDB, err := db.DB()
		if err != nil {
			return false
		}
		return sqlDB.Ping() == nil
	}, 30*time.Second, 1*time.Second, "PostgreSQL not ready for connections")

	require.NoError(t, db.AutoMigrate(
		&repository.UserModel{},
		&repository.TokenCreditModel{},
		&repository.ListingModel{},
		&repository.AvailabilityPeriodModel{},
		&repository.BookingModel{},
	))

	cleanup := func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate PostgreSQL container: %v", err)
		}
	}

	return &testInfra{DB: db, Cleanup: cleanup}
}

// setupKafka starts a Kafka testcontainer and pre-creates the service topics.
func setupKafka(t *testing.T) ([]string, func()) {
	t.Helper()
	ctx := context.Background()

	kafkaContainer, err := kafkamodule.Run(ctx, "confluentinc/confluent-local:7.5.0")
	require.NoError(t, err, "failed to start Kafka container")

	brokers, err := kafkaContainer.Brokers(ctx)
	require.NoError(t, err, "failed to get Kafka brokers")

	createTopics(t, brokers, "booking.events", "payment.events")

	cleanup := func() {
		if err := kafkaContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate Kafka container: %v", err)
		}
	}
	return brokers, cleanup
}

// seedUser inserts a user with the given token balance and returns its ID.
func seedUser(t *testing.T, db *gorm.DB, externalID string, tokens int64) uuid.UUID {
	t.Helper()
	u, err := userDomain.NewUser(externalID, "Test User", externalID+"@example.com", 0)
	require.NoError(t, err)
	if tokens > 0 {
		require.NoError(t, u.Credit(tokens))
	}
	repo := repository.NewGormUserRepository(db)
	require.NoError(t, repo.Save(context.Background(), u))
	return u.ID()
}

// seedListing inserts a listing and returns its ID.
func seedListing(t *testing.T, db *gorm.DB, hostID uuid.UUID, pricePerNight int64) uuid.UUID {
	t.Helper()
	lst, err := listingDomain.NewListing(hostID, "Test cabin", "", "Penang", pricePerNight, nil, nil)
	require.NoError(t, err)
	repo := repository.NewGormListingRepository(db)
	require.NoError(t, repo.Save(context.Background(), lst))
	return lst.ID()
}

// seedPeriod declares an availability period for the listing.
func seedPeriod(t *testing.T, db *gorm.DB, listingID uuid.UUID, start, end string) uuid.UUID {
	t.Helper()
	dates, err := daterange.Parse(start, end)
	require.NoError(t, err)
	period, err := availability.NewPeriod(listingID, dates.Start, dates.End)
	require.NoError(t, err)
	repo := repository.NewGormPeriodRepository(db)
	require.NoError(t, repo.Save(context.Background(), period))
	return period.ID()
}

// userBalance reads the current token balance straight from the table.
func userBalance(t *testing.T, db *gorm.DB, userID uuid.UUID) int64 {
	t.Helper()
	var model repository.UserModel
	require.NoError(t, db.Where("id = ?", userID).First(&model).Error)
	return model.Tokens
}

// countActiveBookings counts non-cancelled bookings for a listing.
func countActiveBookings(t *testing.T, db *gorm.DB, listingID uuid.UUID) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&repository.BookingModel{}).
		Where("listing_id = ? AND status <> ?", listingID, "cancelled").
		Count(&n).Error)
	return n
}

// newUserService wires a UserService without a Kafka producer.
func newUserService(db *gorm.DB) *application.UserService {
	logger, _ := zap.NewDevelopment()
	return application.NewUserService(repository.NewGormUserRepository(db), nil, logger)
}

// publishTestEvent publishes a CloudEvent to Kafka.
func publishTestEvent(t *testing.T, brokers []string, topic, source, eventType string, data interface{}) {
	t.Helper()
	logger, _ := zap.NewDevelopment()
	producer := kafka.NewProducer(brokers, logger)
	defer func() { _ = producer.Close() }()

	ce, err := kafka.NewCloudEvent(source, eventType, data)
	require.NoError(t, err, "failed to create cloud event")

	err = producer.PublishEvent(context.Background(), topic, ce)
	require.NoError(t, err, "failed to publish event")
}

// consumeOneEvent reads from a Kafka topic until it finds an event of the expected type.
func consumeOneEvent(t *testing.T, brokers []string, topic, expectedType string, timeout time.Duration) kafka.CloudEvent {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	groupID := fmt.Sprintf("test-assert-%s", uuid.New().String()[:8])
	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     brokers,
		GroupID:     groupID,
		Topic:       topic,
		MinBytes:    1,
		MaxBytes:    10e6,
		StartOffset: kafkago.FirstOffset,
	})
	defer func() { _ = reader.Close() }()

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				t.Fatalf("timed out waiting for event type %q on topic %q", expectedType, topic)
			}
			continue
		}
		ce, err := kafka.ParseCloudEvent(msg.Value)
		if err != nil {
			continue
		}
		if ce.Type == expectedType {
			return ce
		}
	}
}

// createTopics pre-creates Kafka topics so producers don't fail with "Unknown Topic".
func createTopics(t *testing.T, brokers []string, topics ...string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", brokers[0])
	require.NoError(t, err, "failed to dial Kafka for topic creation")
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err, "failed to get Kafka controller")

	controllerConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, fmt.Sprintf("%d", controller.Port)))
	require.NoError(t, err, "failed to connect to Kafka controller")
	defer controllerConn.Close()

	topicConfigs := make([]kafkago.TopicConfig, len(topics))
	for i, topic := range topics {
		topicConfigs[i] = kafkago.TopicConfig{
			Topic:             topic,
			NumPartitions:     1,
			ReplicationFactor: 1,
		}
	}
	err = controllerConn.CreateTopics(topicConfigs...)
	require.NoError(t, err, "failed to create Kafka topics")

	// Give Kafka a moment to propagate topic metadata.
	time.Sleep(1 * time.Second)
}
