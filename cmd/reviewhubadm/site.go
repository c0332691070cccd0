package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	sqliteadapter "github.com/efisher/reviewhub/internal/adapter/driven/sqlite"
	"github.com/efisher/reviewhub/internal/domain/model"
)

var siteCmd = &cobra.Command{
	Use:   "site",
	Short: "Manage local sites",
}

var siteAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create a local site",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		site, err := sqliteadapter.NewSiteRepo(db).Create(cmd.Context(), model.LocalSite{
			Name:      args[0],
			CreatedAt: time.Now().UTC(),
		})
		if err != nil {
			return err
		}

		fmt.Printf("created site %s (id %d)\n", site.Name, site.ID)
		return nil
	},
}

var siteListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List local sites",
	RunE: func(cmd *cobra.Command, _ []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		sites, err := sqliteadapter.NewSiteRepo(db).ListAll(cmd.Context())
		if err != nil {
			return err
		}

		table := newTable("ID", "NAME", "CREATED")
		for _, s := range sites {
			table.Append([]string{
				strconv.FormatInt(s.ID, 10),
				s.Name,
				s.CreatedAt.UTC().Format(time.RFC3339),
			})
		}
		return table.Render()
	},
}

var siteMemberCmd = &cobra.Command{
	Use:   "member",
	Short: "Manage site membership",
}

var siteMemberAddCmd = &cobra.Command{
	Use:   "add <site> <username>",
	Short: "Add a user to a local site",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		site, user, err := resolveSiteAndUser(cmd, db, args[0], args[1])
		if err != nil {
			return err
		}

		if err := sqliteadapter.NewSiteRepo(db).AddMember(cmd.Context(), site.ID, user.ID); err != nil {
			return err
		}

		fmt.Printf("added %s to site %s\n", user.Username, site.Name)
		return nil
	},
}

var siteMemberRemoveCmd = &cobra.Command{
	Use:     "remove <site> <username>",
	Aliases: []string{"rm"},
	Short:   "Remove a user from a local site",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		site, user, err := resolveSiteAndUser(cmd, db, args[0], args[1])
		if err != nil {
			return err
		}

		if err := sqliteadapter.NewSiteRepo(db).RemoveMember(cmd.Context(), site.ID, user.ID); err != nil {
			return err
		}

		fmt.Printf("removed %s from site %s\n", user.Username, site.Name)
		return nil
	},
}

func resolveSiteAndUser(cmd *cobra.Command, db *sqliteadapter.DB, siteName, username string) (*model.LocalSite, *model.User, error) {
	site, err := sqliteadapter.NewSiteRepo(db).GetByName(cmd.Context(), siteName)
	if err != nil {
		return nil, nil, fmt.Errorf("site %q: %w", siteName, err)
	}

	user, err := sqliteadapter.NewUserRepo(db).GetByUsername(cmd.Context(), username)
	if err != nil {
		return nil, nil, fmt.Errorf("user %q: %w", username, err)
	}

	return site, user, nil
}

func init() {
	siteMemberCmd.AddCommand(siteMemberAddCmd)
	siteMemberCmd.AddCommand(siteMemberRemoveCmd)

	siteCmd.AddCommand(siteAddCmd)
	siteCmd.AddCommand(siteListCmd)
	siteCmd.AddCommand(siteMemberCmd)
}
