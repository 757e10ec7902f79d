// Command loadgen drives steady read traffic against a running
// paycheck backend: it logs in once per worker, then loops over the
// bills and transactions endpoints with a random think time.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/paycheck-sim/paycheck-be/pkg/logging"
)

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "backend base URL")
	userID := flag.String("user", "user_1", "user to authenticate as")
	password := flag.String("password", "pass123", "password for the user")
	workers := flag.Int("workers", 5, "concurrent simulated users")
	duration := flag.Duration("duration", 30*time.Second, "how long to run")
	flag.Parse()

	logging.Setup()

	token, err := login(*baseURL, *userID, *password)
	if err != nil {
		slog.Error("login failed", "error", err)
		os.Exit(1)
	}
	slog.Info("logged in", "user", *userID, "workers", *workers, "duration", *duration)

	deadline := time.Now().Add(*duration)
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		requests int
		failures int
	)
	paths := []string{
		fmt.Sprintf("/bills/%s", *userID),
		fmt.Sprintf("/transactions/%s", *userID),
	}

	for i := 0; i < *workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			client := &http.Client{Timeout: 10 * time.Second}
			for time.Now().Before(deadline) {
				path := paths[rand.Intn(len(paths))]
				ok := get(client, *baseURL+path, token)
				mu.Lock()
				requests++
				if !ok {
					failures++
				}
				mu.Unlock()
				// think time between 1s and 5s, like a human clicking around
				time.Sleep(time.Second + time.Duration(rand.Intn(4000))*time.Millisecond)
			}
		}()
	}
	wg.Wait()

	slog.Info("load run finished", "requests", requests, "failures", failures)
}

func login(baseURL, userID, password string) (string, error) {
	body, err := json.Marshal(map[string]string{"user_id": userID, "password": password})
	if err != nil {
		return "", err
	}
	resp, err := http.Post(baseURL+"/login", "application/json", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("login status %d", resp.StatusCode)
	}

	var envelope struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return "", err
	}
	if envelope.Data.Token == "" {
		return "", fmt.Errorf("login response missing token")
	}
	return envelope.Data.Token, nil
}

func get(client *http.Client, url, token string) bool {
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return false
	}
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := client.Do(req)
	if err != nil {
		slog.Warn("request failed", "url", url, "error", err)
		return false
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		slog.Warn("unexpected status", "url", url, "status", resp.StatusCode)
		return false
	}
	return true
}
