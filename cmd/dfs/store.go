package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/dfs/pkg/dfs/config"
	"github.com/randalmurphal/dfs/pkg/dfs/store"
)

func newStoreCmd(a *app) *cobra.Command {
	var db string

	cmd := &cobra.Command{
		Use:   "store",
		Short: "Keep named specs with revision history",
		Long: `Manage a SQLite library of specs. Every put adds a revision; get returns
the latest unless --revision is given.

Examples:
  dfs store put support -f support.yaml
  dfs store list
  dfs store history support
  dfs store get support --revision 1 -o old.yaml
  dfs store delete support`,
	}
	cmd.PersistentFlags().StringVar(&db, "db", "dfs.db", "library database path")

	open := func() (store.Store, error) {
		return store.NewSQLiteStore(db)
	}

	cmd.AddCommand(
		newStorePutCmd(a, open),
		newStoreGetCmd(open),
		newStoreListCmd(open),
		newStoreHistoryCmd(open),
		newStoreDeleteCmd(open),
	)
	return cmd
}

type openStore func() (store.Store, error)

func newStorePutCmd(a *app, open openStore) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "put NAME -f SPEC",
		Short: "Save a spec as the next revision of NAME",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSpec(file)
			if err != nil {
				return err
			}
			st, err := open()
			if err != nil {
				return err
			}
			defer st.Close()

			info, err := st.Save(args[0], s)
			if err != nil {
				return err
			}
			a.logger.Debug("spec stored", "name", info.Name, "revision", info.Revision, "id", info.ID)
			fmt.Fprintf(cmd.OutOrStdout(), "%s revision %d\n", info.Name, info.Revision)
			return nil
		},
	}
	specFlag(cmd, &file)
	return cmd
}

func newStoreGetCmd(open openStore) *cobra.Command {
	var (
		revision int
		out      string
		format   string
	)
	cmd := &cobra.Command{
		Use:   "get NAME",
		Short: "Print or write a stored spec",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := open()
			if err != nil {
				return err
			}
			defer st.Close()

			s, _, err := st.LoadRevision(args[0], revision)
			if err != nil {
				return err
			}
			if out != "" {
				return s.WriteFile(out)
			}
			data, err := s.Encode(config.Format(format))
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
	cmd.Flags().IntVar(&revision, "revision", 0, "revision to read (0 = latest)")
	cmd.Flags().StringVarP(&out, "output", "o", "", "write to this file instead of stdout")
	cmd.Flags().StringVar(&format, "format", string(config.FormatYAML), "stdout format: yaml, json")
	return cmd
}

func newStoreListCmd(open openStore) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored specs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := open()
			if err != nil {
				return err
			}
			defer st.Close()

			infos, err := st.List()
			if err != nil {
				return err
			}
			return printInfos(cmd, infos)
		},
	}
}

func newStoreHistoryCmd(open openStore) *cobra.Command {
	return &cobra.Command{
		Use:   "history NAME",
		Short: "List every revision of a spec",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := open()
			if err != nil {
				return err
			}
			defer st.Close()

			infos, err := st.History(args[0])
			if err != nil {
				return err
			}
			if len(infos) == 0 {
				return fmt.Errorf("%w: %s", store.ErrNotFound, args[0])
			}
			return printInfos(cmd, infos)
		},
	}
}

func newStoreDeleteCmd(open openStore) *cobra.Command {
	return &cobra.Command{
		Use:   "delete NAME",
		Short: "Delete a spec and all its revisions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := open()
			if err != nil {
				return err
			}
			defer st.Close()
			return st.Delete(args[0])
		},
	}
}

func printInfos(cmd *cobra.Command, infos []store.Info) error {
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tREVISION\tSAVED\tSIZE")
	for _, info := range infos {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%d\n",
			info.Name,
			info.Revision,
			info.Saved.Local().Format(time.DateTime),
			info.Size,
		)
	}
	return tw.Flush()
}
