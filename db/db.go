package db

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	UserCollection        *mongo.Collection
	OrdersCollection      *mongo.Collection
	ChatsCollection       *mongo.Collection
	MessagesCollection    *mongo.Collection
	IdempotencyCollection *mongo.Collection
	Client                *mongo.Client
)

// Initialize MongoDB connection
func init() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found; using system environment")
	}

	uri := os.Getenv("MONGODB_URI")
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}

	var err error
	Client, err = mongo.Connect(context.TODO(), options.Client().ApplyURI(uri))
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}

	UserCollection = Client.Database("mercadodb").Collection("users")
	OrdersCollection = Client.Database("mercadodb").Collection("orders")
	ChatsCollection = Client.Database("mercadodb").Collection("chats")
	MessagesCollection = Client.Database("mercadodb").Collection("messages")
	IdempotencyCollection = Client.Database("mercadodb").Collection("idempotency")
}
