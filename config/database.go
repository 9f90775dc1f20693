package config

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

var MongoConn *mongo.Client

const DefaultDBName = "hrms"

var DBName = DefaultDBName

const (
	UserCollection          = "users"
	EmployeeCollection      = "employees"
	DepartmentCollection    = "departments"
	AttendanceCollection    = "attendances"
	LeaveRequestCollection  = "leave_requests"
	LeaveBalanceCollection  = "leave_balances"
	PayrollCollection       = "payrolls"
	NotificationCollection  = "notifications"
	ExitInterviewCollection = "exit_interviews"
	AttachmentBucket        = "attachments"
)

func MongoConnect(uri, dbName string) error {
	if uri == "" {
		return fmt.Errorf("MONGOSTRING is not set")
	}
	if dbName != "" {
		DBName = dbName
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	log.Println("Connected to MongoDB!")
	MongoConn = client
	return nil
}

func GetCollection(collectionName string) *mongo.Collection {
	if MongoConn == nil {
		log.Fatal("MongoDB client is not initialized. Call MongoConnect() first")
	}
	return MongoConn.Database(DBName).Collection(collectionName)
}

func GetGridFSBucket() (*gridfs.Bucket, error) {
	if MongoConn == nil {
		return nil, fmt.Errorf("MongoDB client is not initialized")
	}
	return gridfs.NewBucket(MongoConn.Database(DBName), options.GridFSBucket().SetName(AttachmentBucket))
}

// InitDatabase creates the unique indexes the data model relies on.
func InitDatabase(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		UserCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		EmployeeCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "employee_code", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "department_id", Value: 1}}},
		},
		DepartmentCollection: {
			{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		AttendanceCollection: {
			{Keys: bson.D{{Key: "employee_id", Value: 1}, {Key: "date", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		LeaveRequestCollection: {
			{Keys: bson.D{{Key: "employee_id", Value: 1}, {Key: "status", Value: 1}}},
		},
		LeaveBalanceCollection: {
			{Keys: bson.D{{Key: "employee_id", Value: 1}, {Key: "year", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		PayrollCollection: {
			{Keys: bson.D{{Key: "employee_id", Value: 1}, {Key: "month", Value: 1}, {Key: "year", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		NotificationCollection: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
		},
	}

	for name, models := range indexes {
		if _, err := GetCollection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", name, err)
		}
	}
	log.Println("Database indexes ensured")
	return nil
}

func DisconnectDB() {
	if MongoConn != nil {
		if err := MongoConn.Disconnect(context.Background()); err != nil {
			log.Printf("Error disconnecting from MongoDB: %v", err)
			return
		}
		log.Println("Disconnected from MongoDB")
	}
}
