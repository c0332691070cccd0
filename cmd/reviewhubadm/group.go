package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	sqliteadapter "github.com/efisher/reviewhub/internal/adapter/driven/sqlite"
	"github.com/efisher/reviewhub/internal/domain/model"
)

var (
	groupDisplayName string
	groupInviteOnly  bool
	groupSiteName    string
)

var groupCmd = &cobra.Command{
	Use:   "group",
	Short: "Manage review groups",
}

var groupAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create a review group",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		siteID, err := resolveSiteScope(cmd, db, groupSiteName)
		if err != nil {
			return err
		}

		displayName := groupDisplayName
		if displayName == "" {
			displayName = args[0]
		}

		group, err := sqliteadapter.NewGroupRepo(db).Create(cmd.Context(), model.Group{
			LocalSiteID: siteID,
			Name:        args[0],
			DisplayName: displayName,
			InviteOnly:  groupInviteOnly,
		})
		if err != nil {
			return err
		}

		fmt.Printf("created group %s (id %d)\n", group.Name, group.ID)
		return nil
	},
}

var groupListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List review groups",
	RunE: func(cmd *cobra.Command, _ []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		siteID, err := resolveSiteScope(cmd, db, groupSiteName)
		if err != nil {
			return err
		}

		groups, err := sqliteadapter.NewGroupRepo(db).ListBySite(cmd.Context(), siteID)
		if err != nil {
			return err
		}

		table := newTable("ID", "NAME", "DISPLAY NAME", "INVITE ONLY")
		for _, g := range groups {
			table.Append([]string{
				strconv.FormatInt(g.ID, 10),
				g.Name,
				g.DisplayName,
				strconv.FormatBool(g.InviteOnly),
			})
		}
		return table.Render()
	},
}

var groupMemberCmd = &cobra.Command{
	Use:   "member",
	Short: "Manage group membership",
}

var groupMemberAddCmd = &cobra.Command{
	Use:   "add <group> <username>",
	Short: "Add a user to a review group",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		group, user, err := resolveGroupAndUser(cmd, db, args[0], args[1])
		if err != nil {
			return err
		}

		if err := sqliteadapter.NewGroupRepo(db).AddMember(cmd.Context(), group.ID, user.ID); err != nil {
			return err
		}

		fmt.Printf("added %s to group %s\n", user.Username, group.Name)
		return nil
	},
}

var groupMemberRemoveCmd = &cobra.Command{
	Use:     "remove <group> <username>",
	Aliases: []string{"rm"},
	Short:   "Remove a user from a review group",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		group, user, err := resolveGroupAndUser(cmd, db, args[0], args[1])
		if err != nil {
			return err
		}

		if err := sqliteadapter.NewGroupRepo(db).RemoveMember(cmd.Context(), group.ID, user.ID); err != nil {
			return err
		}

		fmt.Printf("removed %s from group %s\n", user.Username, group.Name)
		return nil
	},
}

// resolveSiteScope maps an optional site name flag to a scope id. An empty
// name is the default scope.
func resolveSiteScope(cmd *cobra.Command, db *sqliteadapter.DB, siteName string) (*int64, error) {
	if siteName == "" {
		return nil, nil
	}

	site, err := sqliteadapter.NewSiteRepo(db).GetByName(cmd.Context(), siteName)
	if err != nil {
		return nil, fmt.Errorf("site %q: %w", siteName, err)
	}
	return &site.ID, nil
}

func resolveGroupAndUser(cmd *cobra.Command, db *sqliteadapter.DB, groupName, username string) (*model.Group, *model.User, error) {
	siteID, err := resolveSiteScope(cmd, db, groupSiteName)
	if err != nil {
		return nil, nil, err
	}

	group, err := sqliteadapter.NewGroupRepo(db).GetByName(cmd.Context(), siteID, groupName)
	if err != nil {
		return nil, nil, fmt.Errorf("group %q: %w", groupName, err)
	}

	user, err := sqliteadapter.NewUserRepo(db).GetByUsername(cmd.Context(), username)
	if err != nil {
		return nil, nil, fmt.Errorf("user %q: %w", username, err)
	}

	return group, user, nil
}

func init() {
	groupCmd.PersistentFlags().StringVar(&groupSiteName, "site", "", "Local site scope (default: no site)")
	groupAddCmd.Flags().StringVar(&groupDisplayName, "display-name", "", "Human-readable group name")
	groupAddCmd.Flags().BoolVar(&groupInviteOnly, "invite-only", false, "Restrict visibility to group members")

	groupMemberCmd.AddCommand(groupMemberAddCmd)
	groupMemberCmd.AddCommand(groupMemberRemoveCmd)

	groupCmd.AddCommand(groupAddCmd)
	groupCmd.AddCommand(groupListCmd)
	groupCmd.AddCommand(groupMemberCmd)
}
