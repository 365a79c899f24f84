// Seeds the default email templates into the database. Requires admin
// credentials on stdin so it cannot be run blind against production.
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
	"gorm.io/datatypes"
	"gorm.io/gorm/clause"

	"github.com/pawme/pawme-backend/internal/config"
	"github.com/pawme/pawme-backend/internal/database"
	"github.com/pawme/pawme-backend/internal/logging"
	"github.com/pawme/pawme-backend/internal/models"
)

type manifest struct {
	Templates []manifestEntry `yaml:"templates"`
}

type manifestEntry struct {
	ID        string   `yaml:"id"`
	Name      string   `yaml:"name"`
	Subject   string   `yaml:"subject"`
	File      string   `yaml:"file"`
	Variables []string `yaml:"variables"`
}

func main() {
	logging.Setup()

	dir := flag.String("templates", "templates", "directory holding manifest.yaml and the HTML assets")
	force := flag.Bool("force", false, "overwrite templates that already exist")
	flag.Parse()

	cfg := config.Load()
	if cfg.DBPassword == "" {
		slog.Error("DB_PASSWORD environment variable is required")
		os.Exit(1)
	}

	if err := database.Connect(cfg); err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	if err := database.Migrate(); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}

	if err := authenticateAdmin(); err != nil {
		slog.Error("admin authentication failed", "error", err)
		os.Exit(1)
	}

	m, err := loadManifest(filepath.Join(*dir, "manifest.yaml"))
	if err != nil {
		slog.Error("manifest load failed", "error", err)
		os.Exit(1)
	}

	seeded, skipped := 0, 0
	for _, entry := range m.Templates {
		html, err := os.ReadFile(filepath.Join(*dir, entry.File))
		if err != nil {
			slog.Error("template asset read failed", "id", entry.ID, "file", entry.File, "error", err)
			os.Exit(1)
		}

		varsJSON, _ := json.Marshal(entry.Variables)
		tmpl := models.EmailTemplate{
			ID:        entry.ID,
			Name:      entry.Name,
			Subject:   entry.Subject,
			HTML:      string(html),
			Variables: datatypes.JSON(varsJSON),
		}

		tx := database.DB
		if *force {
			tx = tx.Clauses(clause.OnConflict{UpdateAll: true})
		} else {
			tx = tx.Clauses(clause.OnConflict{DoNothing: true})
		}
		res := tx.Create(&tmpl)
		if res.Error != nil {
			slog.Error("template seed failed", "id", entry.ID, "error", res.Error)
			os.Exit(1)
		}
		if res.RowsAffected == 0 {
			skipped++
			slog.Info("template exists, skipped", "id", entry.ID)
			continue
		}
		seeded++
		slog.Info("template seeded", "id", entry.ID)
	}

	slog.Info("done", "seeded", seeded, "skipped", skipped)
}

// authenticateAdmin prompts for credentials and checks them against the
// users table.
func authenticateAdmin() error {
	reader := bufio.NewReader(os.Stdin)

	fmt.Print("Admin email: ")
	email, err := reader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("failed to read email: %w", err)
	}
	fmt.Print("Admin password: ")
	password, err := reader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}
	email = strings.TrimSpace(email)
	password = strings.TrimSpace(password)

	var user models.User
	if err := database.DB.First(&user, "email = ?", strings.ToLower(email)).Error; err != nil {
		return fmt.Errorf("no such user")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return fmt.Errorf("invalid credentials")
	}
	if user.Role != models.RoleAdmin {
		return fmt.Errorf("user %s is not an admin", email)
	}
	return nil
}

func loadManifest(path string) (*manifest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var m manifest
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if len(m.Templates) == 0 {
		return nil, fmt.Errorf("manifest %s lists no templates", path)
	}
	return &m, nil
}
