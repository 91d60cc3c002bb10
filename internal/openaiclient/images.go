package openaiclient

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/YourStyle/moodsprint/internal/constants"
)

// cardImagePromptTemplate can be set at application startup to customize
// the prompt used when requesting card art from OpenAI. Use the token
// "{{card}}" in the template where the card name should be substituted.
var cardImagePromptTemplate string

// SetCardImagePromptTemplate sets a custom prompt template for card art
// generation. Call this during app initialization if you wish to override
// the built-in default.
func SetCardImagePromptTemplate(t string) {
	cardImagePromptTemplate = strings.TrimSpace(t)
}

// GenerateCardImage calls the OpenAI Images API to generate a single PNG
// illustration for the named card. It returns the raw image bytes (PNG)
// or an error.
func GenerateCardImage(ctx context.Context, cardName string) ([]byte, error) {
	cardName = strings.TrimSpace(cardName)
	if cardName == "" {
		return nil, fmt.Errorf("card name is required")
	}

	apiKey := os.Getenv(constants.EnvOpenAIAPIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("%s not set", constants.EnvOpenAIAPIKey)
	}

	prompt := cardImagePromptTemplate
	if prompt == "" {
		prompt = "Create a single PNG illustration of {{card}} for a collectible fantasy card game. Painterly style, vibrant colors, dramatic lighting, centered subject, no text or borders, transparent background."
	}
	prompt = strings.ReplaceAll(prompt, "{{card}}", cardName)

	payload := map[string]interface{}{
		"prompt":  prompt,
		"n":       1,
		"size":    constants.OpenAIImageSizeDefault,
		"model":   constants.OpenAIImageModel,
		"quality": constants.OpenAIImageQualityDefault,
	}

	b, _ := json.Marshal(payload)
	req, err := http.NewRequestWithContext(ctx, "POST", constants.OpenAIBaseURL+constants.OpenAIImagesGenerationsPath, strings.NewReader(string(b)))
	if err != nil {
		return nil, err
	}
	req.Header.Set(constants.HeaderAuthorization, constants.BearerPrefix+apiKey)
	req.Header.Set(constants.HeaderContentType, constants.ContentTypeJSON)

	client := &http.Client{Timeout: 60 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("openai image generation failed: %d %s", resp.StatusCode, string(body))
	}

	var out struct {
		Data []struct {
			B64JSON string `json:"b64_json"`
			URL     string `json:"url"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode OpenAI response: %w", err)
	}
	if len(out.Data) == 0 {
		return nil, fmt.Errorf("openai returned no image data")
	}

	if out.Data[0].B64JSON != "" {
		imgBytes, err := base64.StdEncoding.DecodeString(out.Data[0].B64JSON)
		if err != nil {
			return nil, fmt.Errorf("failed to decode base64 image: %w", err)
		}
		return imgBytes, nil
	}

	return nil, fmt.Errorf("openai returned unsupported image payload")
}
