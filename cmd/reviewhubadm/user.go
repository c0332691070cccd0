package main

import (
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"

	sqliteadapter "github.com/efisher/reviewhub/internal/adapter/driven/sqlite"
	"github.com/efisher/reviewhub/internal/domain/model"
)

var (
	userEmail     string
	userSuperuser bool
	userSubmitAs  bool
	userCanDelete bool
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage users",
}

var userAddCmd = &cobra.Command{
	Use:   "add <username>",
	Short: "Create a user and print its API token",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		token := newToken()
		user, err := sqliteadapter.NewUserRepo(db).Create(cmd.Context(), model.User{
			Username:               args[0],
			Email:                  userEmail,
			APIToken:               token,
			IsSuperuser:            userSuperuser,
			CanSubmitAs:            userSubmitAs,
			CanDeleteReviewRequest: userCanDelete,
			NotifyEnabled:          true,
			CreatedAt:              time.Now().UTC(),
		})
		if err != nil {
			return err
		}

		fmt.Printf("created user %s (id %d)\n", user.Username, user.ID)
		fmt.Printf("api token: %s\n", token)
		return nil
	},
}

var userListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List users",
	RunE: func(cmd *cobra.Command, _ []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		users, err := sqliteadapter.NewUserRepo(db).ListAll(cmd.Context())
		if err != nil {
			return err
		}

		table := newTable("ID", "USERNAME", "EMAIL", "SUPERUSER", "NOTIFY")
		for _, u := range users {
			table.Append([]string{
				strconv.FormatInt(u.ID, 10),
				u.Username,
				u.Email,
				strconv.FormatBool(u.IsSuperuser),
				strconv.FormatBool(u.NotifyEnabled),
			})
		}
		return table.Render()
	},
}

func init() {
	userAddCmd.Flags().StringVar(&userEmail, "email", "", "Email address")
	userAddCmd.Flags().BoolVar(&userSuperuser, "superuser", false, "Grant superuser rights")
	userAddCmd.Flags().BoolVar(&userSubmitAs, "can-submit-as", false, "Allow submitting review requests as other users")
	userAddCmd.Flags().BoolVar(&userCanDelete, "can-delete", false, "Allow deleting own review requests")

	userCmd.AddCommand(userAddCmd)
	userCmd.AddCommand(userListCmd)
}

// newToken generates an opaque API token.
func newToken() string {
	entropy := rand.New(rand.NewSource(time.Now().UnixNano()))
	return ulid.MustNew(ulid.Timestamp(time.Now()), ulid.Monotonic(entropy, 0)).String()
}

// newTable creates a tablewriter configured for plain columnar output.
func newTable(headers ...string) *tablewriter.Table {
	table := tablewriter.NewTable(os.Stdout,
		tablewriter.WithHeaderAlignment(tw.AlignLeft),
		tablewriter.WithRowAlignment(tw.AlignLeft),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.BorderNone,
			Settings: tw.Settings{
				Lines:      tw.LinesNone,
				Separators: tw.SeparatorsNone,
			},
		}),
		tablewriter.WithPadding(tw.Padding{Left: "", Right: "  "}),
	)
	table.Header(headers)
	return table
}
