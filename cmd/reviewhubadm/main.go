// reviewhubadm is the server administration CLI: it manages users, local
// sites, review groups, and repositories directly against the database.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	sqliteadapter "github.com/efisher/reviewhub/internal/adapter/driven/sqlite"
	"github.com/efisher/reviewhub/internal/config"
)

var dbPath string

var rootCmd = &cobra.Command{
	Use:           "reviewhubadm",
	Short:         "ReviewHub server administration",
	Long:          "Manage users, local sites, review groups, and repositories of a ReviewHub instance.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Database path (default from REVIEWHUB_DB_PATH)")

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(userCmd)
	rootCmd.AddCommand(siteCmd)
	rootCmd.AddCommand(groupCmd)
	rootCmd.AddCommand(repositoryCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// openDB opens the database named by --db or the environment config. The
// caller owns the returned handle.
func openDB() (*sqliteadapter.DB, error) {
	path := dbPath
	if path == "" {
		cfg, err := config.Load()
		if err != nil {
			return nil, err
		}
		path = cfg.DBPath
	}

	return sqliteadapter.NewDB(path)
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending schema migrations",
	RunE: func(cmd *cobra.Command, _ []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
			return err
		}

		fmt.Println("migrations complete")
		return nil
	},
}
