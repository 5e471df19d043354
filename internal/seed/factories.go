package seed

import (
	"fmt"
	"strings"
	"time"

	"photoalbum/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Factory builds domain entities and persists them to the database.
// It is a thin helper used by the seeder and by tests.
type Factory struct {
	db    *gorm.DB
	faker *gofakeit.Faker
	hash  string
	seq   int
}

// NewFactory creates a Factory whose users all share password. A zero
// randSeed picks a random one.
func NewFactory(db *gorm.DB, password string, bcryptCost int, randSeed int64) (*Factory, error) {
	if randSeed == 0 {
		randSeed = time.Now().UnixNano()
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash seed password: %w", err)
	}
	return &Factory{db: db, faker: gofakeit.New(randSeed), hash: string(hash)}, nil
}

// BuildUser returns an unsaved user with a unique username and email.
func (f *Factory) BuildUser() *models.User {
	f.seq++
	name := strings.ToLower(f.faker.Username())
	return &models.User{
		Username: fmt.Sprintf("%s%d", name, f.seq),
		Email:    fmt.Sprintf("%s%d@%s", name, f.seq, f.faker.DomainName()),
		Password: f.hash,
	}
}

// CreateUser persists a new user.
func (f *Factory) CreateUser() (*models.User, error) {
	u := f.BuildUser()
	if err := f.db.Create(u).Error; err != nil {
		return nil, err
	}
	return u, nil
}

// CreateAlbum persists an album owned by user.
func (f *Factory) CreateAlbum(user *models.User) (*models.Album, error) {
	album := &models.Album{
		Title:  fmt.Sprintf("%s %s", capitalize(f.faker.Adjective()), f.faker.City()),
		UserID: user.ID,
	}
	if err := f.db.Create(album).Error; err != nil {
		return nil, err
	}
	return album, nil
}

// CreatePhotos attaches n remote placeholder photos to album.
func (f *Factory) CreatePhotos(album *models.Album, n int) ([]models.Photo, error) {
	if n <= 0 {
		return nil, nil
	}
	photos := make([]models.Photo, n)
	for i := range photos {
		photos[i] = models.Photo{
			URL:     fmt.Sprintf("https://picsum.photos/seed/%s/800/600", f.faker.UUID()),
			AlbumID: album.ID,
			UserID:  album.UserID,
		}
	}
	if err := f.db.CreateInBatches(photos, 100).Error; err != nil {
		return nil, err
	}
	return photos, nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
