package main

import (
	"fmt"

	"github.com/spf13/cobra"

	authmodels "teller/internal/auth/models"
	bankmodels "teller/internal/banking/models"
)

func newLoginCmd() *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "login <username>",
		Short: "Authenticate and persist the session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			if password == "" {
				password, err = readPassword("Password: ")
				if err != nil {
					return err
				}
			}
			if err := a.manager.Login(cmd.Context(), args[0], password); err != nil {
				return err
			}
			snap := a.manager.Snapshot()
			fmt.Printf("Logged in as %s (%s)\n", snap.User.Username, snap.User.Role)
			return nil
		},
	}
	cmd.Flags().StringVarP(&password, "password", "p", "", "password (prompted when omitted)")
	return cmd
}

func newRegisterCmd() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "register <username>",
		Short: "Create a new user account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			if password == "" {
				password, err = readPassword("Password: ")
				if err != nil {
					return err
				}
			}
			req := authmodels.RegisterRequest{
				Username: args[0],
				Email:    email,
				Password: password,
			}
			if err := a.manager.Register(cmd.Context(), req); err != nil {
				return err
			}
			fmt.Printf("Registered %s. Run 'teller login' to sign in.\n", args[0])
			return nil
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "email address")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password (prompted when omitted)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the session and clear the stored credential",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			a.manager.Logout(cmd.Context())
			fmt.Println("Logged out.")
			return nil
		},
	}
}

func newWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the identity behind the stored credential",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			if err := requireSession(cmd, a); err != nil {
				return err
			}
			return printJSON(a.manager.Snapshot().User)
		},
	}
}

func newAccountsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Manage bank accounts",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List all accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			if err := requireSession(cmd, a); err != nil {
				return err
			}
			accounts, err := a.accounts.List(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(accounts)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "get <id>",
		Short: "Show one account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			if err := requireSession(cmd, a); err != nil {
				return err
			}
			account, err := a.accounts.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(account)
		},
	})

	var (
		holder      string
		number      string
		accountType string
		balance     float64
	)
	create := &cobra.Command{
		Use:   "create",
		Short: "Open a new account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			if err := requireSession(cmd, a); err != nil {
				return err
			}
			account, err := a.accounts.Create(cmd.Context(), bankmodels.CreateAccountRequest{
				AccountHolderName: holder,
				AccountNumber:     number,
				AccountType:       bankmodels.AccountType(accountType),
				Balance:           balance,
				Status:            bankmodels.AccountStatusActive,
			})
			if err != nil {
				return err
			}
			return printJSON(account)
		},
	}
	create.Flags().StringVar(&holder, "holder", "", "account holder name")
	create.Flags().StringVar(&number, "number", "", "account number")
	create.Flags().StringVar(&accountType, "type", string(bankmodels.AccountTypeChecking), "CHECKING, SAVINGS, CREDIT or INVESTMENT")
	create.Flags().Float64Var(&balance, "balance", 0, "opening balance")
	_ = create.MarkFlagRequired("holder")
	_ = create.MarkFlagRequired("number")
	cmd.AddCommand(create)

	var (
		from   string
		to     string
		amount float64
		method string
	)
	transfer := &cobra.Command{
		Use:   "transfer",
		Short: "Move money between two accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			if err := requireSession(cmd, a); err != nil {
				return err
			}
			err = a.accounts.Transfer(cmd.Context(), bankmodels.TransferRequest{
				FromAccountNumber: from,
				ToAccountNumber:   to,
				Amount:            amount,
				PaymentMethod:     bankmodels.PaymentMethod(method),
			})
			if err != nil {
				return err
			}
			fmt.Printf("Transferred %.2f from %s to %s\n", amount, from, to)
			return nil
		},
	}
	transfer.Flags().StringVar(&from, "from", "", "source account number")
	transfer.Flags().StringVar(&to, "to", "", "destination account number")
	transfer.Flags().Float64Var(&amount, "amount", 0, "amount to move")
	transfer.Flags().StringVar(&method, "method", string(bankmodels.PaymentMethodBankTransfer), "PAYPAL, CREDIT_CARD or BANK_TRANSFER")
	_ = transfer.MarkFlagRequired("from")
	_ = transfer.MarkFlagRequired("to")
	_ = transfer.MarkFlagRequired("amount")
	cmd.AddCommand(transfer)

	return cmd
}

func newTransactionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transactions",
		Short: "Inspect the transaction ledger",
	}

	var accountID string
	list := &cobra.Command{
		Use:   "list",
		Short: "List transactions, optionally scoped to one account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			if err := requireSession(cmd, a); err != nil {
				return err
			}
			transactions, err := a.transactions.List(cmd.Context(), accountID)
			if err != nil {
				return err
			}
			return printJSON(transactions)
		},
	}
	list.Flags().StringVar(&accountID, "account", "", "limit to one account id")
	cmd.AddCommand(list)

	return cmd
}

func newDashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show the account overview",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			if err := requireSession(cmd, a); err != nil {
				return err
			}
			dashboard, err := a.dashboard.Fetch(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(dashboard)
		},
	}
}

func newUsersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Administer users (admin role required)",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List all users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			if err := requireSession(cmd, a); err != nil {
				return err
			}
			if !a.manager.IsAdmin() {
				return fmt.Errorf("admin role required")
			}
			users, err := a.users.List(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(users)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <username>",
		Short: "Delete a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			if err := requireSession(cmd, a); err != nil {
				return err
			}
			if !a.manager.IsAdmin() {
				return fmt.Errorf("admin role required")
			}
			if err := a.users.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Printf("Deleted %s\n", args[0])
			return nil
		},
	})

	return cmd
}
