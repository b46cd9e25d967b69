package main

import (
	"context"
	_ "embed"
	"fmt"
	"os"

	"torrent-catalog/pkg/config"
	"torrent-catalog/pkg/database"
	"torrent-catalog/pkg/logger"
	"torrent-catalog/pkg/models"
	"torrent-catalog/services/catalog/internal/entity"
	"torrent-catalog/services/catalog/internal/repo/persistent"
	"torrent-catalog/services/catalog/internal/usecase"

	"github.com/spf13/pflag"
	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

//go:embed fixtures.yaml
var defaultFixtures []byte

type Fixtures struct {
	Users    []UserFixture    `yaml:"users"`
	Torrents []TorrentFixture `yaml:"torrents"`
}

type UserFixture struct {
	Email     string `yaml:"email"`
	Username  string `yaml:"username"`
	Password  string `yaml:"password"`
	Role      string `yaml:"role"`
	Banned    bool   `yaml:"banned"`
	BanReason string `yaml:"ban_reason"`
}

type TorrentFixture struct {
	Title       string           `yaml:"title"`
	Description string           `yaml:"description"`
	Size        float64          `yaml:"size"`
	Categories  []string         `yaml:"categories"`
	Uploader    string           `yaml:"uploader"`
	Comments    []CommentFixture `yaml:"comments"`
}

type CommentFixture struct {
	Author  string `yaml:"author"`
	Rating  int    `yaml:"rating"`
	Text    string `yaml:"text"`
	Deleted bool   `yaml:"deleted"`
}

// ParseFixtures decodes and checks a fixture file. Every uploader and author
// must be one of the listed users.
func ParseFixtures(data []byte) (*Fixtures, error) {
	var f Fixtures
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode fixtures: %w", err)
	}

	known := make(map[string]bool, len(f.Users))
	for i := range f.Users {
		if f.Users[i].Role == "" {
			f.Users[i].Role = string(models.RoleUser)
		}
		known[f.Users[i].Username] = true
	}

	for _, t := range f.Torrents {
		if !known[t.Uploader] {
			return nil, fmt.Errorf("torrent %q: unknown uploader %q", t.Title, t.Uploader)
		}
		for _, c := range t.Comments {
			if !known[c.Author] {
				return nil, fmt.Errorf("torrent %q: unknown comment author %q", t.Title, c.Author)
			}
			if _, err := usecase.ValidateComment(c.Text, c.Rating); err != nil {
				return nil, fmt.Errorf("torrent %q: %w", t.Title, err)
			}
		}
	}
	return &f, nil
}

func main() {
	fixturesPath := pflag.StringP("fixtures", "f", "", "YAML fixture file (defaults to the embedded set)")
	reset := pflag.Bool("reset", false, "Delete existing torrents and comments before seeding")
	pflag.Parse()

	log := logger.New()

	data := defaultFixtures
	if *fixturesPath != "" {
		raw, err := os.ReadFile(*fixturesPath)
		if err != nil {
			log.Error("Failed to read fixtures: %v", err)
			os.Exit(1)
		}
		data = raw
	}

	fixtures, err := ParseFixtures(data)
	if err != nil {
		log.Error("Invalid fixtures: %v", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Error("Failed to connect to database: %v", err)
		panic(err)
	}

	if *reset {
		if err := db.Exec("DELETE FROM comments").Error; err != nil {
			panic(err)
		}
		if err := db.Exec("DELETE FROM torrents").Error; err != nil {
			panic(err)
		}
		log.Info("Removed existing torrents and comments")
	}

	if err := seed(context.Background(), db, fixtures, log); err != nil {
		log.Error("Seeding failed: %v", err)
		os.Exit(1)
	}
	log.Info("Seeding finished")
}

func seed(ctx context.Context, db *gorm.DB, fixtures *Fixtures, log *logger.Logger) error {
	userIDs := make(map[string]string, len(fixtures.Users))
	usernames := make(map[string]string, len(fixtures.Users))

	for _, u := range fixtures.Users {
		var existing models.User
		if err := db.Where("email = ? OR username = ?", u.Email, u.Username).First(&existing).Error; err == nil {
			log.Info("User %s already exists, skipping", u.Username)
			userIDs[u.Username] = existing.ID
			usernames[u.Username] = existing.Username
			continue
		}

		hashed, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hash password for %s: %w", u.Username, err)
		}

		user := &models.User{
			Email:     u.Email,
			Username:  u.Username,
			Password:  string(hashed),
			Role:      models.UserRole(u.Role),
			Banned:    u.Banned,
			BanReason: u.BanReason,
		}
		if err := db.Create(user).Error; err != nil {
			return fmt.Errorf("create user %s: %w", u.Username, err)
		}

		log.Info("Created user: %s (%s, %s)", user.Username, user.Email, user.Role)
		userIDs[u.Username] = user.ID
		usernames[u.Username] = user.Username
	}

	torrentRepo := persistent.NewTorrentRepository(db)
	commentRepo := persistent.NewCommentRepository(db)
	aggregator := usecase.NewRatingAggregator(commentRepo, torrentRepo, nil, log)

	for _, tf := range fixtures.Torrents {
		var count int64
		if err := db.Model(&models.Torrent{}).Where("title = ?", tf.Title).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			log.Info("Torrent %q already exists, skipping", tf.Title)
			continue
		}

		torrent := &entity.Torrent{
			Title:       tf.Title,
			Description: tf.Description,
			Size:        tf.Size,
			Categories:  tf.Categories,
			UploadedBy:  userIDs[tf.Uploader],
		}
		if err := usecase.ValidateTorrent(torrent); err != nil {
			return fmt.Errorf("torrent %q: %w", tf.Title, err)
		}
		if err := torrentRepo.Create(ctx, torrent); err != nil {
			return fmt.Errorf("create torrent %q: %w", tf.Title, err)
		}

		for _, cf := range tf.Comments {
			text, err := usecase.ValidateComment(cf.Text, cf.Rating)
			if err != nil {
				return err
			}
			authorID := userIDs[cf.Author]
			comment := &entity.Comment{
				TorrentID:  torrent.ID,
				AuthorID:   &authorID,
				AuthorName: usernames[cf.Author],
				Rating:     cf.Rating,
				Text:       text,
			}
			if err := commentRepo.Create(ctx, comment); err != nil {
				return fmt.Errorf("create comment on %q: %w", tf.Title, err)
			}
			if cf.Deleted {
				if err := commentRepo.SoftDelete(ctx, comment.ID); err != nil {
					return err
				}
			}
		}

		summary, err := aggregator.Recompute(ctx, torrent.ID)
		if err != nil {
			return fmt.Errorf("recompute rating for %q: %w", tf.Title, err)
		}
		log.Info("Created torrent %q with %d ratings (avg %.2f)", tf.Title, summary.RatingsCount, summary.AverageRating)
	}

	return nil
}
