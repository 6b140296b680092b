package cli

import (
	"fmt"
	"strings"

	"github.com/apache/iceberg-go"
	"github.com/apache/iceberg-go/table"
	"github.com/spf13/cobra"
)

// parseIdent splits a dot separated identifier.
func parseIdent(s string) table.Identifier {
	return strings.Split(s, ".")
}

// parseProperties turns repeated key=value flags into properties.
func parseProperties(pairs []string) (iceberg.Properties, error) {
	props := iceberg.Properties{}
	for _, pair := range pairs {
		k, v, ok := strings.Cut(pair, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid property %q, expected key=value", pair)
		}
		props[k] = v
	}
	return props, nil
}

func newNamespacesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "namespaces",
		Aliases: []string{"ns"},
		Short:   "Manage namespaces",
	}

	list := &cobra.Command{
		Use:   "list [parent]",
		Short: "List namespaces, optionally under a parent",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := a.catalog(cmd.Context())
			if err != nil {
				return err
			}
			var parent table.Identifier
			if len(args) == 1 {
				parent = parseIdent(args[0])
			}
			namespaces, err := cat.ListNamespaces(cmd.Context(), parent)
			if err != nil {
				return err
			}
			return a.out.identifiers(namespaces)
		},
	}

	var createProps []string
	create := &cobra.Command{
		Use:   "create <namespace>",
		Short: "Create a namespace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			props, err := parseProperties(createProps)
			if err != nil {
				return err
			}
			cat, err := a.catalog(cmd.Context())
			if err != nil {
				return err
			}
			if err := cat.CreateNamespace(cmd.Context(), parseIdent(args[0]), props); err != nil {
				return err
			}
			return a.out.message("created namespace %s", args[0])
		},
	}
	create.Flags().StringArrayVarP(&createProps, "property", "p", nil, "namespace property key=value")

	describe := &cobra.Command{
		Use:   "describe <namespace>",
		Short: "Show namespace properties",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := a.catalog(cmd.Context())
			if err != nil {
				return err
			}
			props, err := cat.LoadNamespaceProperties(cmd.Context(), parseIdent(args[0]))
			if err != nil {
				return err
			}
			return a.out.properties(props)
		},
	}

	drop := &cobra.Command{
		Use:   "drop <namespace>",
		Short: "Drop an empty namespace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := a.catalog(cmd.Context())
			if err != nil {
				return err
			}
			if err := cat.DropNamespace(cmd.Context(), parseIdent(args[0])); err != nil {
				return err
			}
			return a.out.message("dropped namespace %s", args[0])
		},
	}

	var (
		setProps []string
		removals []string
	)
	set := &cobra.Command{
		Use:   "set <namespace>",
		Short: "Set or remove namespace properties",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			updates, err := parseProperties(setProps)
			if err != nil {
				return err
			}
			cat, err := a.catalog(cmd.Context())
			if err != nil {
				return err
			}
			summary, err := cat.UpdateNamespaceProperties(cmd.Context(), parseIdent(args[0]), removals, updates)
			if err != nil {
				return err
			}
			return a.out.summary(summary.Updated, summary.Removed, summary.Missing)
		},
	}
	set.Flags().StringArrayVarP(&setProps, "property", "p", nil, "property to set, key=value")
	set.Flags().StringArrayVar(&removals, "remove", nil, "property key to remove")

	exists := &cobra.Command{
		Use:   "exists <namespace>",
		Short: "Check whether a namespace exists",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := a.catalog(cmd.Context())
			if err != nil {
				return err
			}
			ok, err := cat.CheckNamespaceExists(cmd.Context(), parseIdent(args[0]))
			if err != nil {
				return err
			}
			return a.out.boolean(ok)
		},
	}

	cmd.AddCommand(list, create, describe, drop, set, exists)
	return cmd
}
