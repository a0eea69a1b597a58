package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
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
		Use:   "adledger-cli",
		Short: "AdLedger CLI tool",
		Long:  `A command line interface for interacting with the AdLedger API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the AdLedger API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	adsCmd := &cobra.Command{
		Use:   "ads",
		Short: "Ad operations",
	}
	adsCmd.AddCommand(createAdCmd(), getAdCmd(), listAdsCmd(), deleteAdCmd(), leaderboardCmd(), listViewsCmd())

	rootCmd.AddCommand(adsCmd)
	rootCmd.AddCommand(earningsCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func createAdCmd() *cobra.Command {
	var (
		advertiser  string
		title       string
		description string
		imageURL    string
		targetLink  string
		bid         string
		budget      string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an ad",
		RunE: func(cmd *cobra.Command, args []string) error {
			payload := map[string]any{
				"advertiser_id": advertiser,
				"title":         title,
				"description":   description,
				"image_url":     imageURL,
				"target_link":   targetLink,
				"bid_per_view":  bid,
				"total_budget":  budget,
			}
			return doRequest(http.MethodPost, "/api/v1/ads/", payload)
		},
	}

	cmd.Flags().StringVar(&advertiser, "advertiser", "", "Advertiser ID")
	cmd.Flags().StringVar(&title, "title", "", "Ad title")
	cmd.Flags().StringVar(&description, "description", "", "Ad description")
	cmd.Flags().StringVar(&imageURL, "image", "", "Ad image URL")
	cmd.Flags().StringVar(&targetLink, "link", "", "Target link the view redirects to")
	cmd.Flags().StringVar(&bid, "bid", "", "Amount paid per billable view")
	cmd.Flags().StringVar(&budget, "budget", "", "Total ad budget")
	cmd.MarkFlagRequired("advertiser")
	cmd.MarkFlagRequired("title")
	cmd.MarkFlagRequired("link")
	cmd.MarkFlagRequired("bid")
	cmd.MarkFlagRequired("budget")

	return cmd
}

func getAdCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <ad-id>",
		Short: "Get an ad",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return doRequest(http.MethodGet, "/api/v1/ads/"+url.PathEscape(args[0]), nil)
		},
	}
}

func listAdsCmd() *cobra.Command {
	var advertiser string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List an advertiser's ads",
		RunE: func(cmd *cobra.Command, args []string) error {
			return doRequest(http.MethodGet, "/api/v1/ads/?advertiser_id="+url.QueryEscape(advertiser), nil)
		},
	}

	cmd.Flags().StringVar(&advertiser, "advertiser", "", "Advertiser ID")
	cmd.MarkFlagRequired("advertiser")

	return cmd
}

func deleteAdCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <ad-id>",
		Short: "Delete an ad",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return doRequest(http.MethodDelete, "/api/v1/ads/"+url.PathEscape(args[0]), nil)
		},
	}
}

func leaderboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "leaderboard <ad-id>",
		Short: "Show billed views and earnings per viewer for an ad",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return doRequest(http.MethodGet, "/api/v1/ads/"+url.PathEscape(args[0])+"/leaderboard", nil)
		},
	}
}

func listViewsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "views <ad-id>",
		Short: "List an ad's view records",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return doRequest(http.MethodGet, "/api/v1/ads/"+url.PathEscape(args[0])+"/views", nil)
		},
	}
}

func earningsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "earnings <viewer-id>",
		Short: "Show a viewer's earnings balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return doRequest(http.MethodGet, "/api/v1/viewers/"+url.PathEscape(args[0])+"/earnings", nil)
		},
	}
}

func doRequest(method, path string, payload any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, baseURL+path, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	client := &http.Client{Timeout: timeout}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	if resp.StatusCode >= 400 {
		return fmt.Errorf("request failed (status %d): %s", resp.StatusCode, string(respBody))
	}

	if len(respBody) == 0 {
		fmt.Println("OK")
		return nil
	}

	var parsed any
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		fmt.Println(string(respBody))
		return nil
	}

	printJSON(parsed)
	return nil
}

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("failed to format response: %v\n", err)
		return
	}
	fmt.Println(string(data))
}
