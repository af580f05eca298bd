package repositories

import (
	"encoding/json"
	"os"
	"time"

	"staffly/projects-service/models"

	"github.com/gocql/gocql"
	"github.com/sirupsen/logrus"
)

// NotificationRepository stores notification events in Cassandra, one row per
// event on a per-user or per-project channel. Publishing is fire-and-forget
// from the caller's point of view; failures are logged, not propagated.
type NotificationRepository struct {
	session *gocql.Session
	logger  *logrus.Logger
}

func NewNotificationRepository(logger *logrus.Logger) (*NotificationRepository, error) {
	host := os.Getenv("CASS_DB")
	if host == "" {
		host = "127.0.0.1"
	}

	cluster := gocql.NewCluster(host)
	cluster.Keyspace = "system"
	session, err := cluster.CreateSession()
	if err != nil {
		logger.Errorf("Event ID: CASS_CONNECT_FAILED, Description: %v", err)
		return nil, err
	}

	err = session.Query(
		`CREATE KEYSPACE IF NOT EXISTS notifications
         WITH replication = {
             'class': 'SimpleStrategy',
             'replication_factor': 1
         }`).Exec()
	if err != nil {
		logger.Errorf("Event ID: CASS_KEYSPACE_FAILED, Description: %v", err)
		return nil, err
	}
	session.Close()

	cluster.Keyspace = "notifications"
	cluster.Consistency = gocql.One
	session, err = cluster.CreateSession()
	if err != nil {
		logger.Errorf("Event ID: CASS_KEYSPACE_CONNECT_FAILED, Description: %v", err)
		return nil, err
	}

	logger.Info("Event ID: CASS_CONNECTED, Description: Connected to Cassandra notifications keyspace.")
	return &NotificationRepository{session: session, logger: logger}, nil
}

func (nr *NotificationRepository) CloseSession() {
	nr.session.Close()
	nr.logger.Info("Event ID: CASS_SESSION_CLOSED, Description: Cassandra session closed.")
}

func (nr *NotificationRepository) CreateTable() {
	err := nr.session.Query(
		`CREATE TABLE IF NOT EXISTS notifications (
			id UUID,
			channel TEXT,
			event TEXT,
			message TEXT,
			created_at TIMESTAMP,
			is_read BOOLEAN,
			PRIMARY KEY ((channel), created_at, id)
		) WITH CLUSTERING ORDER BY (created_at DESC, id ASC)`).Exec()
	if err != nil {
		nr.logger.Errorf("Event ID: CASS_TABLE_FAILED, Description: Failed to create notifications table: %v", err)
	}
}

// Publish writes one event onto a channel. Payload is flattened into the
// message as JSON; delivery has no guarantee and errors are swallowed after
// logging, matching the fire-and-forget contract.
func (nr *NotificationRepository) Publish(channel, event string, payload map[string]interface{}) {
	message := ""
	if payload != nil {
		if raw, err := json.Marshal(payload); err == nil {
			message = string(raw)
		}
	}

	err := nr.session.Query(
		`INSERT INTO notifications (id, channel, event, message, created_at, is_read)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		gocql.TimeUUID().String(), channel, event, message, time.Now(), false,
	).Exec()
	if err != nil {
		nr.logger.Errorf("Event ID: NOTIFY_PUBLISH_FAILED, Description: Failed to publish %s to %s: %v", event, channel, err)
	}
}

// ListByChannel returns the notification feed for one channel, newest first.
func (nr *NotificationRepository) ListByChannel(channel string) ([]models.Notification, error) {
	query := `SELECT id, channel, event, message, created_at, is_read
			  FROM notifications WHERE channel = ?`

	iter := nr.session.Query(query, channel).Iter()
	var notifications []models.Notification
	var n models.Notification

	for iter.Scan(&n.ID, &n.Channel, &n.Event, &n.Message, &n.CreatedAt, &n.IsRead) {
		notifications = append(notifications, n)
	}

	if err := iter.Close(); err != nil {
		nr.logger.Errorf("Event ID: NOTIFY_LIST_FAILED, Description: Failed to read channel %s: %v", channel, err)
		return nil, err
	}
	return notifications, nil
}
