// Package cli implements icerest, a command-line client for REST catalogs.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/xixipi-lining/iceberg-rest-client/catalog"
	"github.com/xixipi-lining/iceberg-rest-client/logger"
	"github.com/xixipi-lining/iceberg-rest-client/session"
)

const (
	exitOK     = 0
	exitError  = 1
	exitConfig = 2
)

type app struct {
	v       *viper.Viper
	cfgPath string
	cfg     *Config
	log     logger.Logger
	out     *printer
	cat     *catalog.Catalog
}

// catalog opens the selected catalog on first use.
func (a *app) catalog(ctx context.Context) (*catalog.Catalog, error) {
	if a.cat != nil {
		return a.cat, nil
	}
	name, props, err := a.cfg.catalogProperties(a.v)
	if err != nil {
		return nil, err
	}
	cat, err := catalog.NewCatalog(ctx, name, props, catalog.WithLogger(a.log))
	if err != nil {
		return nil, err
	}
	a.cat = cat
	return cat, nil
}

// NewRootCommand builds the command tree writing results to out.
func NewRootCommand(out io.Writer) *cobra.Command {
	a := &app{v: viper.New(), log: logger.Nop()}

	root := &cobra.Command{
		Use:   "icerest",
		Short: "Inspect and manage an Iceberg REST catalog",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(a.v, a.cfgPath)
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.log = logger.NewLogger(&cfg.Log)

			p, err := newPrinter(out, a.v.GetString("output"))
			if err != nil {
				return err
			}
			a.out = p
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgPath, "config", "", "config file (default: $GOICEBERG_HOME/"+cfgFile+" or ~/"+cfgFile+")")
	flags.String("catalog", "", "catalog name from the config file")
	flags.String("uri", "", "catalog URI")
	flags.String("credential", "", "OAuth client credential, id:secret")
	flags.String("token", "", "bearer token")
	flags.StringP("output", "o", "text", "output format: text, json, yaml")

	for _, name := range []string{"catalog", "uri", "credential", "token", "output"} {
		mustBindPFlag(a.v, name, flags.Lookup(name))
	}

	root.AddCommand(newConfigCmd(a), newNamespacesCmd(a), newTablesCmd(a))
	return root
}

func newConfigCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the merged catalog properties",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := a.catalog(cmd.Context())
			if err != nil {
				return err
			}
			return a.out.properties(redact(cat.Properties()))
		},
	}
}

// Execute runs icerest with args and returns the process exit code.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	root := NewRootCommand(stdout)
	root.SetErr(stderr)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return exitOK
	}
	fmt.Fprintln(stderr, "Error:", err)
	return exitCode(err)
}

func exitCode(err error) int {
	switch {
	case errors.Is(err, errConfig),
		errors.Is(err, session.ErrInvalidConfiguration),
		errors.Is(err, catalog.ErrMissingURI):
		return exitConfig
	default:
		return exitError
	}
}

func mustBindPFlag(v *viper.Viper, key string, flag *pflag.Flag) {
	if err := v.BindPFlag(key, flag); err != nil {
		panic(fmt.Sprintf("viper.BindPFlag(%q): %v", key, err))
	}
}
