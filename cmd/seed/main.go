package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"karaoke/internal/shared/config"
	"karaoke/internal/shared/database"
	"karaoke/internal/songs"
	"karaoke/internal/users"
	"karaoke/internal/venues"
	"karaoke/pkg/logger"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type Seeder struct {
	db *database.DB
}

func main() {
	fmt.Println("🌱 Starting Karaoke Database Seeder...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.IsLocalMode() {
		log.Fatal("Seeder needs STORAGE_MODE=remote")
	}

	db, err := database.InitDB(cfg, logger.New())
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	seeder := &Seeder{db: db}

	fmt.Println("🧹 Cleaning existing data...")
	if err := seeder.CleanDatabase(); err != nil {
		log.Fatalf("Failed to clean database: %v", err)
	}

	fmt.Println("📦 Seeding data...")
	if err := seeder.SeedAll(); err != nil {
		log.Fatalf("Failed to seed data: %v", err)
	}

	fmt.Println("✅ Seeding completed")
}

// CleanDatabase truncates every seeded table
func (s *Seeder) CleanDatabase() error {
	tables := []string{"songs", "venue_documents", "users"}

	tx := s.db.PostgreSQL.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	for _, table := range tables {
		fmt.Printf("  Truncating table: %s\n", table)
		if err := tx.Exec(fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", table)).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}

	return tx.Commit().Error
}

// SeedAll seeds one demo venue with staff and a song catalogue
func (s *Seeder) SeedAll() error {
	ctx := context.Background()

	venueKey, err := s.SeedUsers(ctx)
	if err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}

	if err := venues.NewPostgresRepository(s.db.PostgreSQL).CreateVenue(ctx, venueKey, "Sip & Sing"); err != nil {
		return fmt.Errorf("failed to seed venue: %w", err)
	}
	fmt.Printf("    ✅ Created venue: %s\n", venueKey)

	if err := s.SeedSongs(ctx, venueKey); err != nil {
		return fmt.Errorf("failed to seed songs: %w", err)
	}

	if s.db.Redis != nil {
		if err := s.db.Redis.FlushDB(ctx).Err(); err != nil {
			log.Printf("Warning: Failed to clear Redis cache: %v", err)
		}
	}
	return nil
}

// SeedUsers creates the venue owner and one DJ and returns their venue key
func (s *Seeder) SeedUsers(ctx context.Context) (string, error) {
	fmt.Println("  👤 Seeding users...")

	// Everyone signs in with "qwerty"
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("qwerty"), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	ownerID := uuid.New()
	venueKey := ownerID.String()

	usersData := []struct {
		id    uuid.UUID
		email string
		role  users.Role
	}{
		{ownerID, "owner@sipsing.test", users.RoleOwner},
		{uuid.New(), "dj@sipsing.test", users.RoleDJ},
	}

	for _, userData := range usersData {
		user := users.User{
			ID:        userData.id,
			VenueName: "Sip & Sing",
			Email:     userData.email,
			Password:  string(hashedPassword),
			Role:      userData.role,
			VenueKey:  venueKey,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}

		if err := s.db.PostgreSQL.WithContext(ctx).Create(&user).Error; err != nil {
			return "", fmt.Errorf("failed to create user %s: %w", userData.email, err)
		}
		fmt.Printf("    ✅ Created user: %s (%s)\n", user.Email, user.Role)
	}

	return venueKey, nil
}

// SeedSongs fills the venue catalogue used by song search
func (s *Seeder) SeedSongs(ctx context.Context, venueKey string) error {
	fmt.Println("  🎤 Seeding songs...")

	catalogue := []struct{ title, artist string }{
		{"Bohemian Rhapsody", "Queen"},
		{"Don't Stop Believin'", "Journey"},
		{"Livin' on a Prayer", "Bon Jovi"},
		{"I Will Survive", "Gloria Gaynor"},
		{"Sweet Caroline", "Neil Diamond"},
		{"Total Eclipse of the Heart", "Bonnie Tyler"},
		{"Dancing Queen", "ABBA"},
		{"Mr. Brightside", "The Killers"},
		{"Wonderwall", "Oasis"},
		{"Girls Just Want to Have Fun", "Cyndi Lauper"},
		{"Friends in Low Places", "Garth Brooks"},
		{"Summer of '69", "Bryan Adams"},
	}

	for _, entry := range catalogue {
		song := songs.Song{
			ID:        uuid.New(),
			VenueKey:  venueKey,
			Title:     entry.title,
			Artist:    entry.artist,
			CreatedBy: "seed",
		}
		if err := s.db.PostgreSQL.WithContext(ctx).Create(&song).Error; err != nil {
			return fmt.Errorf("failed to create song %s: %w", entry.title, err)
		}
	}

	fmt.Printf("    ✅ Created %d songs\n", len(catalogue))
	return nil
}
