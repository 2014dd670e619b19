package commands

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ledgerbook-dev/ledgerbook/internal/model"
)

func newClientCommand() *cobra.Command {
	clientCmd := &cobra.Command{
		Use:   "client",
		Short: "Client registry operations",
	}
	clientCmd.PersistentFlags().String("dir", ".", "ledger directory")

	var name, email string
	var netDays int
	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Add a client",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")
			a, err := openApp(dir)
			if err != nil {
				return err
			}
			if name == "" {
				return model.ValidationError{Field: "name", Reason: "required"}
			}
			c := &model.Client{Name: name, Email: email, TermsNetDays: netDays}
			if err := a.st.CreateClient(c); err != nil {
				return err
			}
			fmt.Printf("Added client #%d %s\n", c.ID, c.Name)
			return nil
		},
	}
	addCmd.Flags().StringVar(&name, "name", "", "client name (required)")
	_ = addCmd.MarkFlagRequired("name")
	addCmd.Flags().StringVar(&email, "email", "", "billing email")
	addCmd.Flags().IntVar(&netDays, "net", 30, "payment terms in days")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List clients with open balances",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")
			a, err := openApp(dir)
			if err != nil {
				return err
			}
			clients, err := a.st.Clients()
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tTERMS\tBALANCE")
			for _, c := range clients {
				fmt.Fprintf(tw, "%d\t%s\tnet %d\t%s\n", c.ID, c.Name, c.TermsNetDays, c.Balance.StringFixed(2))
			}
			return tw.Flush()
		},
	}

	clientCmd.AddCommand(addCmd, listCmd)
	return clientCmd
}

func newVendorCommand() *cobra.Command {
	vendorCmd := &cobra.Command{
		Use:   "vendor",
		Short: "Vendor registry operations",
	}
	vendorCmd.PersistentFlags().String("dir", ".", "ledger directory")

	var name, email string
	var netDays int
	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Add a vendor",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")
			a, err := openApp(dir)
			if err != nil {
				return err
			}
			if name == "" {
				return model.ValidationError{Field: "name", Reason: "required"}
			}
			v := &model.Vendor{Name: name, Email: email, TermsNetDays: netDays}
			if err := a.st.CreateVendor(v); err != nil {
				return err
			}
			fmt.Printf("Added vendor #%d %s\n", v.ID, v.Name)
			return nil
		},
	}
	addCmd.Flags().StringVar(&name, "name", "", "vendor name (required)")
	_ = addCmd.MarkFlagRequired("name")
	addCmd.Flags().StringVar(&email, "email", "", "email")
	addCmd.Flags().IntVar(&netDays, "net", 30, "payment terms in days")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List vendors with unpaid balances",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")
			a, err := openApp(dir)
			if err != nil {
				return err
			}
			vendors, err := a.st.Vendors()
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tTERMS\tBALANCE")
			for _, v := range vendors {
				fmt.Fprintf(tw, "%d\t%s\tnet %d\t%s\n", v.ID, v.Name, v.TermsNetDays, v.Balance.StringFixed(2))
			}
			return tw.Flush()
		},
	}

	vendorCmd.AddCommand(addCmd, listCmd)
	return vendorCmd
}
