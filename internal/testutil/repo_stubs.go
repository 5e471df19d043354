// Package testutil provides shared test doubles and fixtures for backend tests.
package testutil

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"sort"
	"sync"
	"time"

	"photoalbum/internal/models"
)

// UserRepoStub is an in-memory user repository for tests.
type UserRepoStub struct {
	mu     sync.Mutex
	items  map[uint]*models.User
	nextID uint

	// BeforeCreate runs before a user is stored; a non-nil error aborts the
	// insert. Tests use it to simulate a concurrent registration winning.
	BeforeCreate func(*models.User) error
}

// NewUserRepoStub creates an empty user repository stub.
func NewUserRepoStub() *UserRepoStub {
	return &UserRepoStub{items: make(map[uint]*models.User), nextID: 1}
}

func (s *UserRepoStub) GetByID(_ context.Context, id uint) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.items[id]
	if !ok {
		return nil, models.NewNotFoundError("User", id)
	}
	clone := *u
	return &clone, nil
}

func (s *UserRepoStub) GetByUsername(_ context.Context, username string) (*models.User, error) {
	return s.find(func(u *models.User) bool { return u.Username == username }), nil
}

func (s *UserRepoStub) GetByEmail(_ context.Context, email string) (*models.User, error) {
	return s.find(func(u *models.User) bool { return u.Email == email }), nil
}

// Create enforces the same uniqueness rules as the database indexes.
func (s *UserRepoStub) Create(_ context.Context, user *models.User) error {
	if s.BeforeCreate != nil {
		if err := s.BeforeCreate(user); err != nil {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.items {
		if u.Username == user.Username {
			return models.NewDuplicateUsernameError()
		}
		if u.Email == user.Email {
			return models.NewDuplicateEmailError()
		}
	}
	user.ID = s.nextID
	s.nextID++
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	clone := *user
	s.items[user.ID] = &clone
	return nil
}

func (s *UserRepoStub) List(_ context.Context, limit, offset int) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.User, 0, len(s.items))
	for _, u := range s.items {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if offset >= len(out) {
		return []models.User{}, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

// Len returns the number of stored users.
func (s *UserRepoStub) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func (s *UserRepoStub) find(match func(*models.User) bool) *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.items {
		if match(u) {
			clone := *u
			return &clone
		}
	}
	return nil
}

// AlbumRepoStub keeps albums and their photos in memory. It implements both
// the album and the photo repository so that the two stay consistent.
type AlbumRepoStub struct {
	mu          sync.Mutex
	albums      map[uint]*models.Album
	photos      map[uint]*models.Photo
	nextAlbumID uint
	nextPhotoID uint

	// DeleteErr, when set, is returned by Delete without touching state.
	DeleteErr error
	// ListCalls counts ListWithPreview invocations.
	ListCalls int
}

// NewAlbumRepoStub creates an empty album repository stub.
func NewAlbumRepoStub() *AlbumRepoStub {
	return &AlbumRepoStub{
		albums:      make(map[uint]*models.Album),
		photos:      make(map[uint]*models.Photo),
		nextAlbumID: 1,
		nextPhotoID: 1,
	}
}

func (s *AlbumRepoStub) Create(_ context.Context, album *models.Album) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	album.ID = s.nextAlbumID
	s.nextAlbumID++
	now := time.Now().UTC()
	album.CreatedAt = now
	album.UpdatedAt = now
	clone := *album
	clone.Photos = nil
	s.albums[album.ID] = &clone
	return nil
}

func (s *AlbumRepoStub) GetByID(_ context.Context, id uint) (*models.Album, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.albums[id]
	if !ok {
		return nil, models.NewNotFoundError("Album", id)
	}
	clone := *a
	return &clone, nil
}

func (s *AlbumRepoStub) GetWithPhotos(ctx context.Context, id uint) (*models.Album, error) {
	album, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	album.Photos = s.photosOf(id, 0)
	return album, nil
}

func (s *AlbumRepoStub) ListWithPreview(_ context.Context, photoLimit int) ([]models.Album, error) {
	s.mu.Lock()
	s.ListCalls++
	out := make([]models.Album, 0, len(s.albums))
	for _, a := range s.albums {
		out = append(out, *a)
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	for i := range out {
		out[i].Photos = s.photosOf(out[i].ID, photoLimit)
	}
	return out, nil
}

func (s *AlbumRepoStub) ListByUser(_ context.Context, userID uint) ([]models.Album, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Album{}
	for _, a := range s.albums {
		if a.UserID == userID {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (s *AlbumRepoStub) Delete(_ context.Context, id uint) ([]models.Photo, error) {
	if s.DeleteErr != nil {
		return nil, s.DeleteErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.albums[id]; !ok {
		return nil, models.NewNotFoundError("Album", id)
	}
	var removed []models.Photo
	for pid, p := range s.photos {
		if p.AlbumID == id {
			removed = append(removed, *p)
			delete(s.photos, pid)
		}
	}
	delete(s.albums, id)
	sort.Slice(removed, func(i, j int) bool { return removed[i].ID < removed[j].ID })
	return removed, nil
}

// Photos returns a photo repository sharing this stub's state.
func (s *AlbumRepoStub) Photos() *PhotoRepoStub {
	return &PhotoRepoStub{albums: s}
}

// PhotoCount returns the number of stored photos.
func (s *AlbumRepoStub) PhotoCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.photos)
}

func (s *AlbumRepoStub) photosOf(albumID uint, limit int) []models.Photo {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Photo{}
	for _, p := range s.photos {
		if p.AlbumID == albumID {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// PhotoRepoStub is the photo side of AlbumRepoStub.
type PhotoRepoStub struct {
	albums *AlbumRepoStub
}

func (p *PhotoRepoStub) Create(_ context.Context, photo *models.Photo) error {
	s := p.albums
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.albums[photo.AlbumID]; !ok {
		return models.NewNotFoundError("Album", photo.AlbumID)
	}
	photo.ID = s.nextPhotoID
	s.nextPhotoID++
	photo.CreatedAt = time.Now().UTC()
	clone := *photo
	s.photos[photo.ID] = &clone
	return nil
}

func (p *PhotoRepoStub) ListByAlbum(_ context.Context, albumID uint) ([]models.Photo, error) {
	return p.albums.photosOf(albumID, 0), nil
}

// TinyPNG returns an in-memory PNG byte slice with the requested dimensions.
func TinyPNG(t interface {
	Helper()
	Fatalf(string, ...any)
}, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	buf := bytes.NewBuffer(nil)
	if err := png.Encode(buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}
