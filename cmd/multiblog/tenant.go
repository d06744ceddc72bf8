package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/eringen/multiblog"
)

var tenantCmd = &cobra.Command{
	Use:   "tenant",
	Short: "Manage tenants",
}

var tenantPutCmd = &cobra.Command{
	Use:   "put <slug> <content-source-id>",
	Short: "Create or update a tenant",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		id, _ := flags.GetString("id")
		domain, _ := flags.GetString("domain")
		name, _ := flags.GetString("name")
		settingsRaw, _ := flags.GetString("settings")
		if settingsFile, _ := flags.GetString("settings-file"); settingsFile != "" {
			b, err := os.ReadFile(settingsFile)
			if err != nil {
				return err
			}
			settingsRaw = string(b)
		}

		store, err := multiblog.NewStore(settings.Database.Driver, settings.Database.DSN)
		if err != nil {
			return err
		}
		defer store.Close()

		if settings.Redis.Addr != "" {
			shared, err := openSharedCache()
			if err != nil {
				return err
			}
			defer shared.Close()
			// Running servers share this cache; drop the tenant's entry so
			// they pick up the change on the next request.
			r := multiblog.NewResolver(store, nil, multiblog.WithSharedPosts(shared))
			store.AfterSave(r.InvalidateTenant)
		}

		if id == "" {
			existing, err := store.FindTenant(cmd.Context(), multiblog.NewSiteQuery(args[0]))
			switch {
			case err == nil && existing.Slug == multiblog.NewSiteQuery(args[0]).Identifier:
				id = existing.ID
			case err != nil && !errors.Is(err, multiblog.ErrTenantNotFound):
				return err
			}
		}

		t, err := store.SaveTenant(cmd.Context(), multiblog.Tenant{
			ID:              id,
			Slug:            args[0],
			CustomDomain:    domain,
			Name:            name,
			ContentSourceID: args[1],
			SettingsRaw:     settingsRaw,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "saved tenant %s (%s)\n", t.Slug, t.ID)
		return nil
	},
}

var tenantListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tenants",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := multiblog.NewStore(settings.Database.Driver, settings.Database.DSN)
		if err != nil {
			return err
		}
		defer store.Close()

		tenants, err := store.ListTenants(cmd.Context())
		if err != nil {
			return err
		}
		if len(tenants) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No tenants.")
			return nil
		}
		printTenants(cmd, tenants)
		return nil
	},
}

func printTenants(cmd *cobra.Command, tenants []multiblog.Tenant) {
	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"ID", "Slug", "Custom Domain", "Name", "Content Source"})
	for _, tn := range tenants {
		domain := tn.CustomDomain
		if domain == "" {
			domain = "-"
		}
		t.AppendRow(table.Row{tn.ID, tn.Slug, domain, tn.Name, tn.ContentSourceID})
	}
	t.AppendFooter(table.Row{"", "", "", "Total", len(tenants)})
	t.Render()
}

var tenantDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a tenant",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := multiblog.NewStore(settings.Database.Driver, settings.Database.DSN)
		if err != nil {
			return err
		}
		defer store.Close()
		return store.DeleteTenant(cmd.Context(), args[0])
	},
}

func init() {
	f := tenantPutCmd.Flags()
	f.String("id", "", "tenant ID to update (a new one is generated when empty)")
	f.String("domain", "", "custom domain, e.g. blog.example.com")
	f.String("name", "", "display name")
	f.String("settings", "", `settings JSON, e.g. {"title":"My blog","links":[]}`)
	f.String("settings-file", "", "read settings JSON from a file")

	tenantCmd.AddCommand(tenantPutCmd, tenantListCmd, tenantDeleteCmd)
	rootCmd.AddCommand(tenantCmd)
}
