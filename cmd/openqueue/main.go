// Command openqueue is a small operator client for the OpenQueue API:
// exercise the login-token handoff, inspect scopes and purge caches
// against a running server.
package main

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/OpenQueue/API/internal/security/secretbox"
)

type client struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client
}

func (c *client) do(method, path string, body []byte, headers map[string]string) (int, []byte, error) {
	url := strings.TrimRight(c.BaseURL, "/") + path
	req, err := http.NewRequest(method, url, bytes.NewReader(body))
	if err != nil {
		return 0, nil, err
	}
	if c.APIKey != "" {
		basic := base64.StdEncoding.EncodeToString([]byte(":" + c.APIKey))
		req.Header.Set("Authorization", "Basic "+basic)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, b, nil
}

func (c *client) print(status int, body []byte) {
	var v any
	if json.Unmarshal(body, &v) == nil {
		p, _ := json.MarshalIndent(v, "", "  ")
		fmt.Println(string(p))
		return
	}
	if len(body) > 0 {
		fmt.Println(string(body))
	} else {
		fmt.Printf("status=%d\n", status)
	}
}

func main() {
	c := &client{HTTP: &http.Client{Timeout: 15 * time.Second}}

	root := &cobra.Command{
		Use:           "openqueue",
		Short:         "OpenQueue API operator client",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&c.BaseURL, "url", envOr("OPENQUEUE_URL", "http://localhost:8080"), "API base URL")
	root.PersistentFlags().StringVar(&c.APIKey, "key", os.Getenv("OPENQUEUE_API_KEY"), "API key (Basic auth password)")

	tokenCmd := &cobra.Command{Use: "token", Short: "Login-token handoff operations"}

	tokenCmd.AddCommand(&cobra.Command{
		Use:   "generate",
		Short: "Issue a login token for the key's league",
		RunE: func(cmd *cobra.Command, args []string) error {
			status, body, err := c.do(http.MethodPost, "/api/auth/generate", nil, nil)
			if err != nil {
				return err
			}
			c.print(status, body)
			return nil
		},
	})

	consume := &cobra.Command{
		Use:   "consume <user_token>",
		Short: "Consume a user token and print the bound user id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			status, body, err := c.do(http.MethodGet, "/api/auth/user?user_token="+args[0], nil, nil)
			if err != nil {
				return err
			}
			c.print(status, body)
			return nil
		},
	}
	tokenCmd.AddCommand(consume)

	purge := &cobra.Command{
		Use:   "purge <league_id>",
		Short: "Purge cached league data via the caching webhook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			matchID, _ := cmd.Flags().GetString("match")
			payload, _ := json.Marshal(map[string]string{
				"league_id": args[0],
				"match_id":  matchID,
			})
			status, body, err := c.do(http.MethodPost, "/api/caching", payload,
				map[string]string{"CachingWebhook": "1"})
			if err != nil {
				return err
			}
			c.print(status, body)
			return nil
		},
	}
	purge.Flags().String("match", "", "match id to purge")

	health := &cobra.Command{
		Use:   "health",
		Short: "Check service health",
		RunE: func(cmd *cobra.Command, args []string) error {
			status, body, err := c.do(http.MethodGet, "/healthz", nil, nil)
			if err != nil {
				return err
			}
			c.print(status, body)
			return nil
		},
	}

	dsnEncrypt := &cobra.Command{
		Use:   "dsn-encrypt <plaintext_dsn>",
		Short: "Encrypt a storage DSN for use as enc:... in config",
		Long: "Seals the DSN with the key in STORAGE_DSN_KEY and prints the\n" +
			"value to put in storage.dsn (with the enc: prefix).",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := os.Getenv("STORAGE_DSN_KEY")
			if key == "" {
				return fmt.Errorf("STORAGE_DSN_KEY not set; generate one with: openssl rand -base64 32")
			}
			sealed, err := secretbox.Encrypt(key, args[0])
			if err != nil {
				return err
			}
			fmt.Println("enc:" + sealed)
			return nil
		},
	}

	root.AddCommand(tokenCmd, purge, health, dsnEncrypt)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
