// Command main runs the database seeder for the photo album.
package main

import (
	"context"
	"flag"
	"log"

	"photoalbum/internal/bootstrap"
	"photoalbum/internal/config"
	"photoalbum/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 10, "Number of users to create")
	albums := flag.Int("albums", 3, "Albums per user")
	photos := flag.Int("photos", 6, "Photos per album")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	randSeed := flag.Int64("rand-seed", 0, "Seed for reproducible data (0 picks one)")
	flag.Parse()

	log.Println("🌱 Database Seeder")
	log.Println("==================")
	log.Printf("Target: %d users, %d albums each, %d photos per album, clean=%v\n", *numUsers, *albums, *photos, *shouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()
	rt, err := bootstrap.InitRuntime(ctx, cfg, bootstrap.Options{SkipStorage: true})
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}

	sum, err := seed.Seed(ctx, rt.DB, seed.Options{
		NumUsers:       *numUsers,
		AlbumsPerUser:  *albums,
		PhotosPerAlbum: *photos,
		Clean:          *shouldClean,
		BcryptCost:     cfg.BcryptCost,
		RandSeed:       *randSeed,
	})
	rt.Close()
	if err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}

	log.Printf("✨ All done! Created %d users, %d albums and %d photos.", sum.Users, sum.Albums, sum.Photos)
	log.Printf("📧 All test users have the password: %s", seed.DefaultPassword)
}
