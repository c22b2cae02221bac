package config

import "os"

// Config menampung semua setting dari environment variable
// Di-load sekali di main, lalu dioper ke komponen yang butuh (tidak pakai global)
type Config struct {
	Port               string
	DBUser             string
	DBPassword         string
	DBHost             string
	DBPort             string
	DBName             string
	JWTSecret          string
	MidtransServerKey  string
	MidtransProduction bool
	FirebaseCredential string
}

func Load() *Config {
	return &Config{
		Port:               getEnv("PORT", "8080"),
		DBUser:             getEnv("DB_USER", "root"),
		DBPassword:         getEnv("DB_PASSWORD", ""),
		DBHost:             getEnv("DB_HOST", "127.0.0.1"),
		DBPort:             getEnv("DB_PORT", "3306"),
		DBName:             getEnv("DB_NAME", "fisiocare"),
		JWTSecret:          getEnv("JWT_SECRET", ""),
		MidtransServerKey:  getEnv("MIDTRANS_SERVER_KEY", ""),
		MidtransProduction: os.Getenv("MIDTRANS_ENV") == "production",
		FirebaseCredential: getEnv("FIREBASE_CREDENTIAL", "firebase-service-account.json"),
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
