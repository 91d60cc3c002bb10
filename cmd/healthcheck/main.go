package main

import (
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/YourStyle/moodsprint/internal/constants"
)

// Container healthcheck: checks the version endpoint of the local
// server. MOODSPRINT_ADDR must match the server's listen address when
// it is not the default.
func main() {
	addr := os.Getenv(constants.EnvServerAddr)
	if addr == "" {
		addr = ":8080"
	}
	if strings.HasPrefix(addr, ":") {
		addr = "127.0.0.1" + addr
	}

	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get("http://" + addr + constants.RouteAPIPrefix + "/version")
	if err != nil {
		os.Exit(1)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		os.Exit(1)
	}
	os.Exit(0)
}
