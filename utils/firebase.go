package utils

import (
	"context"
	"fmt"
	"log"
	"os"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"github.com/sharath018/event-resource-backend/config"
	"google.golang.org/api/option"
)

var (
	FirebaseApp    *firebase.App
	FirebaseClient *messaging.Client
)

// InitFirebase sets up the FCM client. A missing credentials file disables
// push delivery without failing startup.
func InitFirebase(cfg *config.Config) error {
	path := cfg.FCMCredentialsPath
	if path == "" {
		path = os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")
	}
	if path == "" {
		log.Println("⚠️  FCM not configured (FCM_CREDENTIALS_PATH missing), push disabled")
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		log.Printf("⚠️  Firebase credentials not readable at %s, push disabled", path)
		return fmt.Errorf("firebase credentials: %w", err)
	}

	ctx := context.Background()
	var fbCfg *firebase.Config
	if cfg.FCMProjectID != "" {
		fbCfg = &firebase.Config{ProjectID: cfg.FCMProjectID}
	}

	app, err := firebase.NewApp(ctx, fbCfg, option.WithCredentialsFile(path))
	if err != nil {
		log.Printf("❌ Error initializing Firebase app: %v", err)
		return fmt.Errorf("firebase app initialization failed: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		log.Printf("❌ Error getting FCM client: %v", err)
		return fmt.Errorf("FCM client initialization failed: %w", err)
	}

	FirebaseApp = app
	FirebaseClient = client
	log.Printf("✅ FCM initialized for project %q", cfg.FCMProjectID)
	return nil
}

func IsFCMEnabled() bool {
	return FirebaseClient != nil
}
