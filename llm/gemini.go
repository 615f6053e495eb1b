package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// SearchCriteria is the structured form of a natural-language property
// query. Zero values mean the criterion was not mentioned.
type SearchCriteria struct {
	Budget      float64 `json:"budget"`
	Bedrooms    int     `json:"kamar_tidur"`
	Bathrooms   int     `json:"kamar_mandi"`
	MinLandArea float64 `json:"luas_tanah"`
	SubDistrict string  `json:"kecamatan"`
	Condition   string  `json:"kondisi"`
}

// GeminiExtractor turns Indonesian property queries into SearchCriteria
// via the Gemini generateContent API.
type GeminiExtractor struct {
	apiKey  string
	model   string
	client  *http.Client
	baseURL string
}

func NewGeminiExtractor(apiKey, model string, timeout time.Duration) *GeminiExtractor {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}
	return &GeminiExtractor{
		apiKey:  apiKey,
		model:   model,
		client:  &http.Client{Timeout: timeout},
		baseURL: "https://generativelanguage.googleapis.com/v1beta/models",
	}
}

func (g *GeminiExtractor) ExtractCriteria(ctx context.Context, query string) (*SearchCriteria, error) {
	if g == nil || g.client == nil {
		return nil, errors.New("gemini extractor not configured")
	}
	if g.apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	prompt := fmt.Sprintf(`Anda adalah asisten pencarian properti rumah di Prabumulih. Analisis pertanyaan pengguna dan ekstrak kriteria pencarian.

Pertanyaan: %q

Kecamatan yang tersedia: Prabumulih Selatan, Prabumulih Timur, Prabumulih Barat, Prabumulih Utara, Cambai, Rambang Kapak Tengah.
Nilai kondisi yang valid: baru, baik, renovasi_ringan, butuh_renovasi.

Aturan:
- budget dalam rupiah (contoh: "500 juta" berarti 500000000), 0 jika tidak disebut
- kamar_tidur dan kamar_mandi berupa angka, 0 jika tidak disebut
- luas_tanah dalam m2 minimum, 0 jika tidak disebut
- kecamatan dan kondisi string kosong jika tidak disebut

Jawab hanya dengan JSON:
{"budget": 0, "kamar_tidur": 0, "kamar_mandi": 0, "luas_tanah": 0, "kecamatan": "", "kondisi": ""}
`, query)

	requestBody := geminiRequest{
		Contents: []geminiContent{{
			Parts: []geminiPart{{Text: prompt}},
		}},
	}
	payload, err := json.Marshal(requestBody)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/%s:generateContent?key=%s", g.baseURL, g.model, g.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr geminiErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error.Message != "" {
			return nil, fmt.Errorf("gemini api error: %s", apiErr.Error.Message)
		}
		return nil, fmt.Errorf("gemini api returned status %d", resp.StatusCode)
	}

	var apiResp geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, err
	}
	if len(apiResp.Candidates) == 0 || len(apiResp.Candidates[0].Content.Parts) == 0 {
		return nil, errors.New("gemini api returned empty response")
	}
	return parseCriteria(apiResp.Candidates[0].Content.Parts[0].Text)
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

type geminiErrorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

func parseCriteria(content string) (*SearchCriteria, error) {
	trimmed := strings.TrimSpace(content)
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(trimmed, "```")
	trimmed = strings.TrimSpace(trimmed)

	var criteria SearchCriteria
	if err := json.Unmarshal([]byte(trimmed), &criteria); err != nil {
		return nil, err
	}
	return &criteria, nil
}
