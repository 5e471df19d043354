// Command admin provides maintenance utilities for the photo album.
package main

import (
	"context"
	"fmt"
	"os"

	"photoalbum/internal/bootstrap"
	"photoalbum/internal/config"
	"photoalbum/internal/database"
	"photoalbum/internal/repository"
	"photoalbum/internal/service"
	"photoalbum/internal/storage"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

func main() {
	if err := newRootCmd(openApp).Execute(); err != nil {
		os.Exit(1)
	}
}

// adminApp holds the services the commands operate on.
type adminApp struct {
	db     *gorm.DB
	auth   *service.AuthService
	users  *service.UserService
	albums *service.AlbumService
}

type opener func(ctx context.Context) (*adminApp, func(), error)

func newAdminApp(db *gorm.DB, store storage.Store, bcryptCost int) *adminApp {
	userRepo := repository.NewUserRepository(db)
	albumRepo := repository.NewAlbumRepository(db)
	photoRepo := repository.NewPhotoRepository(db)
	return &adminApp{
		db:     db,
		auth:   service.NewAuthService(userRepo, bcryptCost),
		users:  service.NewUserService(userRepo, albumRepo),
		albums: service.NewAlbumService(albumRepo, photoRepo, userRepo, store),
	}
}

// openApp reads the config and connects the runtime. The caller must call
// the returned cleanup func.
func openApp(ctx context.Context) (*adminApp, func(), error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("reading config: %w", err)
	}
	rt, err := bootstrap.InitRuntime(ctx, cfg, bootstrap.Options{})
	if err != nil {
		return nil, nil, fmt.Errorf("initializing runtime: %w", err)
	}
	return newAdminApp(rt.DB, rt.Store, cfg.BcryptCost), rt.Close, nil
}

func newRootCmd(open opener) *cobra.Command {
	root := &cobra.Command{
		Use:           "admin",
		Short:         "Photo album maintenance",
		SilenceUsage:  true,
	}

	// withApp opens the runtime around a command body.
	withApp := func(run func(cmd *cobra.Command, args []string, a *adminApp) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			a, closeFn, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()
			return run(cmd, args, a)
		}
	}

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *adminApp) error {
			if err := database.Migrate(a.db); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Schema is up to date")
			return nil
		}),
	}

	createUserCmd := &cobra.Command{
		Use:   "create-user",
		Short: "Register a user account",
		RunE:  withApp(runCreateUser),
	}
	createUserCmd.Flags().StringP("username", "u", "", "Username")
	createUserCmd.Flags().StringP("email", "e", "", "Email address")
	createUserCmd.Flags().StringP("password", "p", "", "Password")
	for _, f := range []string{"username", "email", "password"} {
		_ = createUserCmd.MarkFlagRequired(f)
	}

	listUsersCmd := &cobra.Command{
		Use:   "list-users",
		Short: "List user accounts",
		RunE:  withApp(runListUsers),
	}
	listUsersCmd.Flags().IntP("limit", "n", 50, "Maximum number of users to show")
	listUsersCmd.Flags().Int("offset", 0, "Number of users to skip")

	showUserCmd := &cobra.Command{
		Use:   "show-user <id>",
		Short: "Show a user and their albums",
		Args:  cobra.ExactArgs(1),
		RunE:  withApp(runShowUser),
	}

	listAlbumsCmd := &cobra.Command{
		Use:   "list-albums",
		Short: "List albums with their photo previews",
		RunE:  withApp(runListAlbums),
	}

	deleteAlbumCmd := &cobra.Command{
		Use:   "delete-album <id>",
		Short: "Delete an album, its photos and their stored files",
		Args:  cobra.ExactArgs(1),
		RunE:  withApp(runDeleteAlbum),
	}

	root.AddCommand(migrateCmd, createUserCmd, listUsersCmd, showUserCmd, listAlbumsCmd, deleteAlbumCmd)
	return root
}
