// Package main posts one check request to a running server and prints the result.
// Credentials come from flags or IG_USERNAME / IG_PASSWORD.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/Bangnus/Check-Unfollows-IG/internal/api/handlers"
	"github.com/Bangnus/Check-Unfollows-IG/internal/auth"
	"github.com/Bangnus/Check-Unfollows-IG/internal/models"
	"github.com/Bangnus/Check-Unfollows-IG/internal/version"
)

func main() {
	baseURL := flag.String("url", "http://localhost:3000", "Server base URL")
	username := flag.String("username", os.Getenv("IG_USERNAME"), "Instagram username")
	password := flag.String("password", os.Getenv("IG_PASSWORD"), "Instagram password")
	clientUser := flag.String("clientuser", "", "Profile to inspect (defaults to username)")
	includeLists := flag.Bool("include-lists", false, "Request the full lists")
	screenshot := flag.Bool("screenshot", false, "Request a screenshot on failure")
	token := flag.String("token", os.Getenv("API_TOKEN"), "Bearer token")
	secret := flag.String("secret", os.Getenv("API_JWT_SECRET"), "Mint a token with this secret when -token is empty")
	timeout := flag.Duration("timeout", 15*time.Minute, "Request timeout")
	flag.Parse()

	if *token == "" && *secret != "" {
		minted, err := auth.NewVerifier(*secret, "").Sign("smoke", time.Hour)
		if err != nil {
			fail("mint token: %v", err)
		}
		*token = minted
	}

	body, err := json.Marshal(models.CheckRequest{
		Username:     *username,
		Password:     *password,
		ClientUser:   *clientUser,
		IncludeLists: *includeLists,
		Screenshot:   *screenshot,
	})
	if err != nil {
		fail("encode request: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, *baseURL+handlers.CheckPath, bytes.NewReader(body))
	if err != nil {
		fail("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", version.Get().UserAgent())
	if *token != "" {
		req.Header.Set("Authorization", "Bearer "+*token)
	}

	start := time.Now()
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fail("request failed: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		fail("read response: %v", err)
	}
	fmt.Fprintf(os.Stderr, "status %d in %s\n", resp.StatusCode, time.Since(start).Round(time.Millisecond))

	if resp.StatusCode != http.StatusOK {
		var e handlers.CheckError
		if json.Unmarshal(raw, &e) == nil && e.Message != "" {
			if e.Screenshot != "" {
				e.Screenshot = fmt.Sprintf("<%d bytes base64>", len(e.Screenshot))
			}
			out, _ := json.MarshalIndent(e, "", "  ")
			fmt.Println(string(out))
		} else {
			fmt.Println(string(raw))
		}
		os.Exit(1)
	}

	var result models.CheckResponse
	if err := json.Unmarshal(raw, &result); err != nil {
		fail("decode response: %v", err)
	}
	fmt.Printf("following=%d followers=%d not_following_back=%d partial=%t\n",
		result.Stats.FollowingCount, result.Stats.FollowersCount,
		result.Stats.NotFollowingBackCount, result.Diagnostics.Partial)
	for _, u := range result.NotFollowingBack {
		fmt.Println(u.ProfileLink)
	}
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
