package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

// Exercises a running server end to end: provision, open a session, chat,
// read usage.

type client struct {
	baseURL       string
	token         string
	internalToken string
	http          *http.Client
}

func prettyPrint(raw []byte) {
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		fmt.Println(string(raw))
		return
	}
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(b))
}

func (c *client) send(method, path string, body interface{}, internal bool) (*http.Response, []byte, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, nil, err
		}
		bodyReader = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if internal {
		req.Header.Set("X-Internal-Token", c.internalToken)
	} else {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	return resp, respBody, err
}

func (c *client) step(title, method, path string, body interface{}, internal bool) []byte {
	color.Yellow("\n%s", title)
	resp, raw, err := c.send(method, path, body, internal)
	if err != nil {
		color.Red("Failed: %v", err)
		os.Exit(1)
	}
	if resp.StatusCode >= 300 {
		color.Red("Status: %s", resp.Status)
	} else {
		color.Green("Status: %s", resp.Status)
	}
	prettyPrint(raw)
	return raw
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	_ = godotenv.Load()

	userId := uuid.New()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userId.String(),
		"exp":     time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(os.Getenv("JWT_SECRET")))
	if err != nil {
		color.Red("Failed to sign token: %v", err)
		os.Exit(1)
	}

	c := &client{
		baseURL:       getEnv("SMOKE_BASE_URL", "http://localhost:3000/api"),
		token:         token,
		internalToken: os.Getenv("INTERNAL_API_TOKEN"),
		http:          &http.Client{Timeout: 90 * time.Second},
	}

	color.Cyan("Smoke test as user %s", userId)

	c.step("1. Provision quota", http.MethodPut, "/internal/quotas/"+userId.String(),
		map[string]interface{}{"plan": "mini", "max_messages": 3}, true)

	raw := c.step("2. Create session", http.MethodPost, "/sessions",
		map[string]string{"title": "Smoke test"}, false)

	var created struct {
		Data struct {
			Id string `json:"id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &created); err != nil || created.Data.Id == "" {
		color.Red("Skipping chat: session id missing")
		os.Exit(1)
	}

	c.step("3. Send message", http.MethodPost, "/sessions/"+created.Data.Id+"/messages",
		map[string]string{"content": "Give me one tip for a first technical interview."}, false)

	c.step("4. History", http.MethodGet, "/sessions/"+created.Data.Id+"/messages", nil, false)
	c.step("5. Usage", http.MethodGet, "/usage", nil, false)
}
