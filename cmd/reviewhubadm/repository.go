package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	sqliteadapter "github.com/efisher/reviewhub/internal/adapter/driven/sqlite"
	"github.com/efisher/reviewhub/internal/domain/model"
)

var (
	repositoryTool     string
	repositorySiteName string
)

var repositoryCmd = &cobra.Command{
	Use:     "repository",
	Aliases: []string{"repo"},
	Short:   "Manage repositories",
}

var repositoryAddCmd = &cobra.Command{
	Use:   "add <name> <path>",
	Short: "Register a source repository",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		siteID, err := resolveSiteScope(cmd, db, repositorySiteName)
		if err != nil {
			return err
		}

		repo, err := sqliteadapter.NewRepositoryRepo(db).Create(cmd.Context(), model.Repository{
			LocalSiteID: siteID,
			Name:        args[0],
			Path:        args[1],
			Tool:        repositoryTool,
		})
		if err != nil {
			return err
		}

		fmt.Printf("created repository %s (id %d)\n", repo.Name, repo.ID)
		return nil
	},
}

var repositoryListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List repositories",
	RunE: func(cmd *cobra.Command, _ []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		siteID, err := resolveSiteScope(cmd, db, repositorySiteName)
		if err != nil {
			return err
		}

		repos, err := sqliteadapter.NewRepositoryRepo(db).ListBySite(cmd.Context(), siteID)
		if err != nil {
			return err
		}

		table := newTable("ID", "NAME", "PATH", "TOOL")
		for _, r := range repos {
			table.Append([]string{
				strconv.FormatInt(r.ID, 10),
				r.Name,
				r.Path,
				r.Tool,
			})
		}
		return table.Render()
	},
}

func init() {
	repositoryCmd.PersistentFlags().StringVar(&repositorySiteName, "site", "", "Local site scope (default: no site)")
	repositoryAddCmd.Flags().StringVar(&repositoryTool, "tool", "Git", "SCM tool identifier")

	repositoryCmd.AddCommand(repositoryAddCmd)
	repositoryCmd.AddCommand(repositoryListCmd)
}
