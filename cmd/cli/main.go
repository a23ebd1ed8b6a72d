package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	baseURL string
	timeout time.Duration
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "ledgerctl",
		Short: "Ledger back-office CLI",
		Long:  `A command line interface for the parceldesk ledger API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the ledger API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	rootCmd.AddCommand(accountsCmd())
	rootCmd.AddCommand(recalculateCmd())
	rootCmd.AddCommand(verifyCmd())
	rootCmd.AddCommand(statementCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func accountsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Account operations",
	}

	var kind string
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			url := baseURL + "/api/v1/accounts/"
			if kind != "" {
				url += "?kind=" + kind
			}
			return getAndPrint(url)
		},
	}
	listCmd.Flags().StringVar(&kind, "kind", "", "Filter by party kind (VENDOR or CUSTOMER)")

	getCmd := &cobra.Command{
		Use:   "get <account-id>",
		Short: "Show one account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return getAndPrint(baseURL + "/api/v1/accounts/" + args[0])
		},
	}

	cmd.AddCommand(listCmd)
	cmd.AddCommand(getCmd)
	return cmd
}

func recalculateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "recalculate <account-id>",
		Short: "Rebuild the running balance chain of an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := &http.Client{Timeout: timeout}
			resp, err := client.Post(baseURL+"/api/v1/accounts/"+args[0]+"/recalculate", "application/json", nil)
			if err != nil {
				return fmt.Errorf("request failed: %w", err)
			}
			defer resp.Body.Close()

			body, _ := io.ReadAll(resp.Body)
			if resp.StatusCode == http.StatusConflict {
				return fmt.Errorf("recalculation already in progress for %s", args[0])
			}
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("recalculation failed (status %d): %s", resp.StatusCode, truncate(string(body), 200))
			}

			return printRaw(body)
		},
	}
}

func verifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify <account-id>",
		Short: "Replay an account's history and report balance breaks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return getAndPrint(baseURL + "/api/v1/accounts/" + args[0] + "/verify")
		},
	}
}

func statementCmd() *cobra.Command {
	var (
		from        string
		to          string
		page        int
		limit       int
		recalculate bool
	)

	cmd := &cobra.Command{
		Use:   "statement <account-id>",
		Short: "Fetch an account statement",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			url := fmt.Sprintf("%s/api/v1/accounts/%s/statement?page=%d&limit=%d&recalculate=%t",
				baseURL, args[0], page, limit, recalculate)
			if from != "" {
				url += "&from=" + from
			}
			if to != "" {
				url += "&to=" + to
			}
			return getAndPrint(url)
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "Start of the date range (RFC 3339)")
	cmd.Flags().StringVar(&to, "to", "", "End of the date range (RFC 3339)")
	cmd.Flags().IntVar(&page, "page", 1, "Page number")
	cmd.Flags().IntVar(&limit, "limit", 20, "Page size")
	cmd.Flags().BoolVar(&recalculate, "recalculate", false, "Recalculate balances before fetching")
	return cmd
}

func getAndPrint(url string) error {
	client := &http.Client{Timeout: timeout}
	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("request failed (status %d): %s", resp.StatusCode, truncate(string(body), 200))
	}

	return printRaw(body)
}

func printRaw(body []byte) error {
	var decoded any
	if err := json.Unmarshal(body, &decoded); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	printJSON(decoded)
	return nil
}

func printJSON(v any) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("failed to render output: %v\n", err)
		return
	}
	fmt.Println(string(out))
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
