package cli

import (
	"strings"

	"github.com/apache/iceberg-go/table"
	"github.com/spf13/cobra"

	"github.com/xixipi-lining/iceberg-rest-client/catalog"
)

func describeTable(tbl *catalog.Table) tableView {
	meta := tbl.Metadata()
	schema := meta.CurrentSchema()

	v := tableView{
		Identifier:       joinIdent(tbl.Identifier()),
		UUID:             meta.TableUUID().String(),
		Location:         meta.Location(),
		MetadataLocation: tbl.MetadataLocation(),
		SchemaID:         schema.ID,
		Fields:           []fieldView{},
		Properties:       tbl.Properties(),
	}
	for _, f := range schema.Fields() {
		v.Fields = append(v.Fields, fieldView{ID: f.ID, Name: f.Name, Type: f.Type.String(), Required: f.Required})
	}
	return v
}

func joinIdent(id table.Identifier) string {
	return strings.Join(id, ".")
}

func newTablesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tables",
		Short: "Manage tables",
	}

	list := &cobra.Command{
		Use:   "list <namespace>",
		Short: "List tables in a namespace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := a.catalog(cmd.Context())
			if err != nil {
				return err
			}
			tables, err := cat.ListTables(cmd.Context(), parseIdent(args[0]))
			if err != nil {
				return err
			}
			return a.out.identifiers(tables)
		},
	}

	describe := &cobra.Command{
		Use:   "describe <table>",
		Short: "Show table metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := a.catalog(cmd.Context())
			if err != nil {
				return err
			}
			tbl, err := cat.LoadTable(cmd.Context(), parseIdent(args[0]))
			if err != nil {
				return err
			}
			return a.out.table(describeTable(tbl))
		},
	}

	exists := &cobra.Command{
		Use:   "exists <table>",
		Short: "Check whether a table exists",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := a.catalog(cmd.Context())
			if err != nil {
				return err
			}
			ok, err := cat.CheckTableExists(cmd.Context(), parseIdent(args[0]))
			if err != nil {
				return err
			}
			return a.out.boolean(ok)
		},
	}

	var purge bool
	drop := &cobra.Command{
		Use:   "drop <table>",
		Short: "Drop a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := a.catalog(cmd.Context())
			if err != nil {
				return err
			}
			id := parseIdent(args[0])
			if purge {
				err = cat.PurgeTable(cmd.Context(), id)
			} else {
				err = cat.DropTable(cmd.Context(), id)
			}
			if err != nil {
				return err
			}
			return a.out.message("dropped table %s", args[0])
		},
	}
	drop.Flags().BoolVar(&purge, "purge", false, "also delete table data")

	rename := &cobra.Command{
		Use:   "rename <from> <to>",
		Short: "Rename a table",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := a.catalog(cmd.Context())
			if err != nil {
				return err
			}
			tbl, err := cat.RenameTable(cmd.Context(), parseIdent(args[0]), parseIdent(args[1]))
			if err != nil {
				return err
			}
			return a.out.message("renamed %s to %s", args[0], joinIdent(tbl.Identifier()))
		},
	}

	register := &cobra.Command{
		Use:   "register <table> <metadata-location>",
		Short: "Register an existing metadata file as a table",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := a.catalog(cmd.Context())
			if err != nil {
				return err
			}
			tbl, err := cat.RegisterTable(cmd.Context(), parseIdent(args[0]), args[1])
			if err != nil {
				return err
			}
			return a.out.table(describeTable(tbl))
		},
	}

	var props []string
	setProps := &cobra.Command{
		Use:   "set-properties <table>",
		Short: "Set table properties",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			updates, err := parseProperties(props)
			if err != nil {
				return err
			}
			cat, err := a.catalog(cmd.Context())
			if err != nil {
				return err
			}
			tbl, err := cat.LoadTable(cmd.Context(), parseIdent(args[0]))
			if err != nil {
				return err
			}
			next, err := tbl.Commit(cmd.Context(),
				[]table.Requirement{table.AssertTableUUID(tbl.Metadata().TableUUID())},
				[]table.Update{table.NewSetPropertiesUpdate(updates)})
			if err != nil {
				return err
			}
			return a.out.properties(next.Properties())
		},
	}
	setProps.Flags().StringArrayVarP(&props, "property", "p", nil, "property to set, key=value")

	cmd.AddCommand(list, describe, exists, drop, rename, register, setProps)
	return cmd
}
