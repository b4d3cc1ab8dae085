package v1_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	v1 "github.com/pricedex/pricedex/infrastructure/api/v1"
)

type analyzeResponse struct {
	Data struct {
		Type       string `json:"type"`
		ID         string `json:"id"`
		Attributes struct {
			Analysis   string `json:"analysis"`
			Confidence string `json:"confidence"`
			Fallback   bool   `json:"fallback"`
			History    []struct {
				Year  string  `json:"year"`
				Price float64 `json:"price"`
			} `json:"history"`
		} `json:"attributes"`
	} `json:"data"`
	Included []struct {
		Type string `json:"type"`
		ID   string `json:"id"`
	} `json:"included"`
}

func TestAnalyzeRouter_Analyze_LocalFallback(t *testing.T) {
	client := newTestClient(t)
	upsertProduct(t, client, "Ceramic tiles", "690100", "japan", map[string]float64{
		"2022": 11.0, "2023": 12.5, "2024": 13.1,
	})

	routes := v1.NewAnalyzeRouter(client).Routes()

	body := `{"data":{"type":"analyze","attributes":{"query":"Ceramic tiles"}}}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	w := httptest.NewRecorder()

	routes.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status code = %v, want %v; body: %s", w.Code, http.StatusOK, w.Body.String())
	}

	var response analyzeResponse
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if response.Data.Type != "analysis" {
		t.Errorf("type = %v, want analysis", response.Data.Type)
	}
	if !response.Data.Attributes.Fallback {
		t.Error("fallback = false, want true without a text provider")
	}
	if response.Data.Attributes.Analysis == "" {
		t.Error("analysis is empty")
	}
	if response.Data.Attributes.Confidence == "" {
		t.Error("confidence is empty")
	}
	if len(response.Data.Attributes.History) != 3 {
		t.Errorf("len(History) = %v, want 3", len(response.Data.Attributes.History))
	}
	if len(response.Included) != 1 || response.Included[0].Type != "match" {
		t.Errorf("included = %+v, want one match resource", response.Included)
	}
}

func TestAnalyzeRouter_Analyze_NoMatch(t *testing.T) {
	client := newTestClient(t)
	routes := v1.NewAnalyzeRouter(client).Routes()

	body := `{"data":{"type":"analyze","attributes":{"query":"anything"}}}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	w := httptest.NewRecorder()

	routes.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status code = %v, want %v; body: %s", w.Code, http.StatusNotFound, w.Body.String())
	}
}

func TestAnalyzeRouter_Analyze_QueryRequired(t *testing.T) {
	client := newTestClient(t)
	routes := v1.NewAnalyzeRouter(client).Routes()

	body := `{"data":{"type":"analyze","attributes":{}}}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	w := httptest.NewRecorder()

	routes.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status code = %v, want %v", w.Code, http.StatusBadRequest)
	}
}
