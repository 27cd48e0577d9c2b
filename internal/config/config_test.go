package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	if cfg.ServerPort == "" {
		t.Fatalf("expected default server port")
	}
	if cfg.NominatimURL == "" {
		t.Fatalf("expected default nominatim url")
	}
	if cfg.OSRMFootURL == "" {
		t.Fatalf("expected default osrm url")
	}
	if cfg.GeocodeCountry != "kr" {
		t.Fatalf("expected kr country scope")
	}
	if cfg.ChatModel == "" {
		t.Fatalf("expected default chat model")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", ":9000")
	t.Setenv("NOMINATIM_URL", "http://nominatim.local")
	t.Setenv("OSRM_FOOT_URL", "http://osrm.local")
	t.Setenv("HUGGINGFACE_API_KEY", "hf-token")

	cfg := Load()
	if cfg.ServerPort != ":9000" {
		t.Fatalf("expected override port")
	}
	if cfg.NominatimURL != "http://nominatim.local" {
		t.Fatalf("expected override nominatim")
	}
	if cfg.OSRMFootURL != "http://osrm.local" {
		t.Fatalf("expected override osrm")
	}
	if cfg.HuggingFaceAPIKey != "hf-token" {
		t.Fatalf("expected override hf key")
	}
}
