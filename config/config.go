package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// TransitionPolicy controls whether PATCH /orders/{id}/status must obey the
// order transition table ("strict") or may set any known status ("free").
type TransitionPolicy string

const (
	PolicyStrict TransitionPolicy = "strict"
	PolicyFree   TransitionPolicy = "free"
)

var (
	SecretKey []byte

	Port        string
	DatabaseURL string
	RedisURL    string

	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string

	FCMAPIKey       string
	VAPIDPublicKey  string
	VAPIDPrivateKey string
	VAPIDSubject    string

	Policy TransitionPolicy
)

func Init() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	secret := os.Getenv("JWT_SECRET_KEY")
	if secret == "" {
		log.Fatal("JWT secret key not set")
	}
	SecretKey = []byte(secret)

	DatabaseURL = os.Getenv("DATABASE_URL")
	if DatabaseURL == "" {
		log.Fatal("DATABASE_URL not set")
	}

	Port = os.Getenv("PORT")
	if Port == "" {
		Port = "3001"
	}

	RedisURL = os.Getenv("REDIS_URL")
	if RedisURL == "" {
		RedisURL = "redis://localhost:6379"
	}

	SMTPHost = os.Getenv("SMTP_HOST")
	SMTPUser = os.Getenv("EMAIL_USER")
	SMTPPass = os.Getenv("EMAIL_PASS")
	if port := os.Getenv("SMTP_PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			log.Fatalf("invalid SMTP_PORT: %v", err)
		}
		SMTPPort = p
	} else {
		SMTPPort = 587
	}

	FCMAPIKey = os.Getenv("FCM_API_KEY")
	VAPIDPublicKey = os.Getenv("VAPID_PUBLIC_KEY")
	VAPIDPrivateKey = os.Getenv("VAPID_PRIVATE_KEY")
	VAPIDSubject = os.Getenv("VAPID_SUBJECT")

	switch os.Getenv("ORDER_TRANSITION_POLICY") {
	case "free":
		Policy = PolicyFree
	case "", "strict":
		Policy = PolicyStrict
	default:
		log.Fatal("ORDER_TRANSITION_POLICY must be 'strict' or 'free'")
	}
}
