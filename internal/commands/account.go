package commands

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/ledgerbook-dev/ledgerbook/internal/accounts"
	"github.com/ledgerbook-dev/ledgerbook/internal/model"
	"github.com/ledgerbook-dev/ledgerbook/internal/tax"
)

func newAccountCommand() *cobra.Command {
	accountCmd := &cobra.Command{
		Use:   "account",
		Short: "Chart of accounts operations",
	}
	accountCmd.PersistentFlags().String("dir", ".", "ledger directory")
	accountCmd.AddCommand(newAccountListCommand())
	accountCmd.AddCommand(newAccountAddCommand())
	accountCmd.AddCommand(newAccountVerifyCommand())
	return accountCmd
}

func newAccountListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List accounts with balances",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")
			a, err := openApp(dir)
			if err != nil {
				return err
			}

			accts, err := accounts.NewService(a.st).All()
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "CODE\tNAME\tTYPE\tBALANCE")
			for _, acct := range accts {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", acct.Code, acct.Name, acct.Type, acct.Balance.StringFixed(2))
			}
			return tw.Flush()
		},
	}
}

func newAccountAddCommand() *cobra.Command {
	var code, name, accountType, subtype, parentCode, description string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an account to the chart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")
			a, err := openApp(dir)
			if err != nil {
				return err
			}

			svc := accounts.NewService(a.st)
			var parentID uint
			if parentCode != "" {
				parent, err := svc.ByCode(parentCode)
				if err != nil {
					return err
				}
				parentID = parent.ID
			}

			acct, err := svc.Create(accounts.CreateParams{
				Code:        code,
				Name:        name,
				Type:        model.AccountType(accountType),
				Subtype:     subtype,
				ParentID:    parentID,
				Description: description,
			})
			if err != nil {
				return err
			}
			fmt.Printf("Added account %s %s\n", acct.Code, acct.Name)
			return a.audit("account_added", fmt.Sprintf("%s %s (%s)", acct.Code, acct.Name, acct.Type), acct.Code)
		},
	}

	cmd.Flags().StringVar(&code, "code", "", "account code (required)")
	_ = cmd.MarkFlagRequired("code")
	cmd.Flags().StringVar(&name, "name", "", "account name (required)")
	_ = cmd.MarkFlagRequired("name")
	cmd.Flags().StringVar(&accountType, "type", "", "asset|liability|equity|revenue|expense (required)")
	_ = cmd.MarkFlagRequired("type")
	cmd.Flags().StringVar(&subtype, "subtype", "", "subtype, e.g. current or fixed")
	cmd.Flags().StringVar(&parentCode, "parent", "", "parent account code")
	cmd.Flags().StringVar(&description, "description", "", "description")

	return cmd
}

func newAccountVerifyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Check cached balances against posted journal lines",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")
			a, err := openApp(dir)
			if err != nil {
				return err
			}

			mismatches, err := accounts.NewService(a.st).VerifyBalances()
			if err != nil {
				return err
			}
			if len(mismatches) == 0 {
				fmt.Println("All account balances match posted activity.")
				return nil
			}
			for _, m := range mismatches {
				fmt.Printf("%s: cached %s, recomputed %s\n", m.Code, m.Cached.StringFixed(2), m.Computed.StringFixed(2))
			}
			return fmt.Errorf("%d account(s) out of balance", len(mismatches))
		},
	}
}

func newTaxCommand() *cobra.Command {
	taxCmd := &cobra.Command{
		Use:   "tax",
		Short: "Tax rate operations",
	}
	taxCmd.PersistentFlags().String("dir", ".", "ledger directory")

	var name, percent, liabilityCode string
	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Add a tax rate",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")
			a, err := openApp(dir)
			if err != nil {
				return err
			}

			pct, err := decimal.NewFromString(percent)
			if err != nil {
				return fmt.Errorf("parsing percent %q: %w", percent, err)
			}
			var liabilityID uint
			if liabilityCode != "" {
				acct, err := a.st.AccountByCode(liabilityCode)
				if err != nil {
					return err
				}
				liabilityID = acct.ID
			}

			rate, err := a.rates.Create(tax.CreateParams{
				Name:               name,
				Percentage:         pct,
				LiabilityAccountID: liabilityID,
			})
			if err != nil {
				return err
			}
			fmt.Printf("Added tax rate %q at %s%%\n", rate.Name, rate.Percentage.String())
			return nil
		},
	}
	addCmd.Flags().StringVar(&name, "name", "", "rate name (required)")
	_ = addCmd.MarkFlagRequired("name")
	addCmd.Flags().StringVar(&percent, "percent", "", "percentage, e.g. 8 or 8.25 (required)")
	_ = addCmd.MarkFlagRequired("percent")
	addCmd.Flags().StringVar(&liabilityCode, "account", "", "liability account code tax accrues to")

	taxCmd.AddCommand(addCmd)
	return taxCmd
}
