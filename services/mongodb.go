package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"petplus-bot/models"
)

// ChatArchive persists chat turns to MongoDB for later review. It is
// optional; a nil archive disables persistence entirely.
type ChatArchive struct {
	client   *mongo.Client
	database *mongo.Database
}

// InitChatArchive connects to MongoDB and prepares the messages collection.
func InitChatArchive(ctx context.Context, uri, databaseName string) (*ChatArchive, error) {
	clientOptions := options.Client().ApplyURI(uri)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, err
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}

	slog.Info("Connected to MongoDB", "database", databaseName)

	archive := &ChatArchive{
		client:   client,
		database: client.Database(databaseName),
	}
	archive.createIndexes()
	return archive, nil
}

func (a *ChatArchive) createIndexes() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	messages := a.database.Collection("messages")
	messages.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.M{"sender_id": 1}},
		{Keys: bson.M{"timestamp": -1}},
		{Keys: bson.M{"message_id": 1}, Options: options.Index().SetUnique(true)},
	})
}

// Disconnect closes the underlying connection.
func (a *ChatArchive) Disconnect(ctx context.Context) error {
	if a == nil {
		return nil
	}
	return a.client.Disconnect(ctx)
}

// SaveInbound archives a message received from a user.
func (a *ChatArchive) SaveInbound(ctx context.Context, senderID, text string) error {
	if a == nil {
		return nil
	}
	return a.save(ctx, &models.ChatRecord{
		MessageID: uuid.NewString(),
		SenderID:  senderID,
		Message:   text,
		IsBot:     false,
		Timestamp: time.Now(),
	})
}

// SaveOutbound archives one action the bot sent to a user.
func (a *ChatArchive) SaveOutbound(ctx context.Context, recipientID string, action models.OutboundAction) error {
	if a == nil {
		return nil
	}
	return a.save(ctx, &models.ChatRecord{
		MessageID: uuid.NewString(),
		SenderID:  recipientID,
		Message:   action.Text,
		ImageURL:  action.URL,
		IsBot:     true,
		Timestamp: time.Now(),
	})
}

func (a *ChatArchive) save(ctx context.Context, record *models.ChatRecord) error {
	collection := a.database.Collection("messages")
	_, err := collection.InsertOne(ctx, record)
	return err
}
