package main

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"photoalbum/internal/service"

	"github.com/spf13/cobra"
)

func parseUintArg(arg, what string) (uint, error) {
	id, err := strconv.ParseUint(arg, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid %s id %q", what, arg)
	}
	return uint(id), nil
}

func runCreateUser(cmd *cobra.Command, _ []string, a *adminApp) error {
	username, _ := cmd.Flags().GetString("username")
	email, _ := cmd.Flags().GetString("email")
	password, _ := cmd.Flags().GetString("password")

	user, err := a.auth.Register(cmd.Context(), service.RegisterInput{
		Username:        username,
		Email:           email,
		Password:        password,
		ConfirmPassword: password,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created user %d (%s)\n", user.ID, user.Username)
	return nil
}

func runListUsers(cmd *cobra.Command, _ []string, a *adminApp) error {
	limit, _ := cmd.Flags().GetInt("limit")
	offset, _ := cmd.Flags().GetInt("offset")

	users, err := a.users.ListUsers(cmd.Context(), limit, offset)
	if err != nil {
		return err
	}
	if len(users) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No users")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tUSERNAME\tEMAIL\tCREATED")
	for _, u := range users {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", u.ID, u.Username, u.Email, u.CreatedAt.Format("2006-01-02"))
	}
	return w.Flush()
}

func runShowUser(cmd *cobra.Command, args []string, a *adminApp) error {
	id, err := parseUintArg(args[0], "user")
	if err != nil {
		return err
	}
	user, err := a.users.GetProfile(cmd.Context(), id)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "User:     %s (id %d)\n", user.Username, user.ID)
	fmt.Fprintf(out, "Email:    %s\n", user.Email)
	fmt.Fprintf(out, "Joined:   %s\n", user.CreatedAt.Format("2006-01-02 15:04"))
	fmt.Fprintf(out, "Albums:   %d\n", len(user.Albums))
	for _, album := range user.Albums {
		fmt.Fprintf(out, "  %d\t%s\n", album.ID, album.Title)
	}
	return nil
}

func runListAlbums(cmd *cobra.Command, _ []string, a *adminApp) error {
	albums, err := a.albums.ListAlbums(cmd.Context())
	if err != nil {
		return err
	}
	if len(albums) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No albums")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tOWNER\tPREVIEW")
	for _, album := range albums {
		owner := strconv.FormatUint(uint64(album.UserID), 10)
		if album.User != nil {
			owner = album.User.Username
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\n", album.ID, album.Title, owner, len(album.Photos))
	}
	return w.Flush()
}

// runDeleteAlbum deletes on behalf of the album's owner so the regular
// cascade and object cleanup apply.
func runDeleteAlbum(cmd *cobra.Command, args []string, a *adminApp) error {
	id, err := parseUintArg(args[0], "album")
	if err != nil {
		return err
	}
	album, err := a.albums.GetAlbum(cmd.Context(), id)
	if err != nil {
		return err
	}
	if err := a.albums.DeleteAlbum(cmd.Context(), service.DeleteAlbumInput{
		AlbumID:     album.ID,
		RequesterID: album.UserID,
	}); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted album %d (%s) and %d photos\n", album.ID, album.Title, len(album.Photos))
	return nil
}
