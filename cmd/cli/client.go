package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"

	requestmodels "github.com/quorumfed/aggregator/internal/api/models"
	"github.com/quorumfed/aggregator/internal/core/config"
	"github.com/quorumfed/aggregator/internal/utils"
)

const clientTimeout = 10 * time.Second

func serverURL(cfg *config.Config, path string) string {
	return fmt.Sprintf("http://%s:%s%s%s", cfg.Server.Host, cfg.Server.Port, cfg.Server.Endpoint, path)
}

// RegisterTrainer registers a trainer address with a running server.
func RegisterTrainer(address string, cfg *config.Config) error {
	if !common.IsHexAddress(address) {
		return fmt.Errorf("invalid trainer address %q", address)
	}

	body, err := json.Marshal(requestmodels.RegisterTrainerRequest{Address: address})
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	client := &http.Client{Timeout: clientTimeout}
	resp, err := client.Post(serverURL(cfg, "/trainers"), "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to reach server: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			fmt.Printf("Warning: failed to close response body: %v\n", err)
		}
	}()

	if resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("server rejected registration with status %d", resp.StatusCode)
	}
	return nil
}

// SubmitUpdate submits a comma-separated delta vector on behalf of a
// trainer and reports the quorum outcome.
func SubmitUpdate(address, valuesCSV string, cfg *config.Config) (string, error) {
	if !common.IsHexAddress(address) {
		return "", fmt.Errorf("invalid trainer address %q", address)
	}

	delta, err := parseDelta(valuesCSV)
	if err != nil {
		return "", err
	}

	body, err := json.Marshal(requestmodels.SubmitUpdateRequest{
		Address: address,
		Update:  utils.EncodeFloat32s(delta),
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	client := &http.Client{Timeout: clientTimeout}
	resp, err := client.Post(serverURL(cfg, "/updates"), "application/json", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to reach server: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			fmt.Printf("Warning: failed to close response body: %v\n", err)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("server rejected update with status %d", resp.StatusCode)
	}

	var result requestmodels.SubmitUpdateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	return fmt.Sprintf("%s (ratio %.4f)", result.Outcome, result.Ratio), nil
}

func parseDelta(valuesCSV string) ([]float32, error) {
	parts := strings.Split(valuesCSV, ",")
	delta := make([]float32, 0, len(parts))
	for _, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 32)
		if err != nil {
			return nil, fmt.Errorf("invalid delta value %q: %w", part, err)
		}
		delta = append(delta, float32(v))
	}
	return delta, nil
}
