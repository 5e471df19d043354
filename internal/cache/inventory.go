package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	// AlbumPreviewKey holds the album listing with capped photo previews.
	AlbumPreviewKey = "albums:preview"
	albumKeyPattern = "album:%d"
	userKeyPattern  = "user:%d"
)

const (
	AlbumPreviewTTL = time.Minute
	AlbumTTL        = 5 * time.Minute
	UserTTL         = 5 * time.Minute
)

func AlbumKey(albumID uint) string {
	return fmt.Sprintf(albumKeyPattern, albumID)
}

func UserKey(userID uint) string {
	return fmt.Sprintf(userKeyPattern, userID)
}

// Invalidate drops keys, ignoring errors since entries expire on their own.
func Invalidate(ctx context.Context, keys ...string) {
	if client == nil || len(keys) == 0 {
		return
	}
	client.Del(ctx, keys...)
}

// InvalidateAlbum drops the album detail entry and the listing that embeds it.
func InvalidateAlbum(ctx context.Context, albumID uint) {
	Invalidate(ctx, AlbumKey(albumID), AlbumPreviewKey)
}
