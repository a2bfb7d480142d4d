package server

import (
	"bytes"
	"encoding/json"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vearutop/exrplanes"
	"github.com/vearutop/exrplanes/internal/exrcodec"
)

func setupTestServer(toggle string) *httptest.Server {
	s := NewServer(Config{
		Version: "test",
		Toggle:  func() string { return toggle },
	})
	return httptest.NewServer(s.Router())
}

func testImage() *exrplanes.Image {
	img := exrplanes.NewImage(3, 2)
	for i := range img.R.Data {
		img.R.Data[i] = float64(i) / 2
		img.G.Data[i] = 1 - float64(i)/8
	}
	return img
}

func encodeImage(t *testing.T, url string, img *exrplanes.Image) []byte {
	t.Helper()
	body, err := json.Marshal(img)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	resp, err := http.Post(url+"/api/v1/encode", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("Failed to make request: %v", err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", resp.StatusCode, data)
	}
	if ct := resp.Header.Get("Content-Type"); ct != ContentTypeEXR {
		t.Errorf("Expected Content-Type %s, got %s", ContentTypeEXR, ct)
	}
	return data
}

func TestHealthEndpoint(t *testing.T) {
	server := setupTestServer("")
	defer server.Close()

	resp, err := http.Get(server.URL + "/health")
	if err != nil {
		t.Fatalf("Failed to make request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}

	var health HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if health.Status != "healthy" || health.Version != "test" {
		t.Errorf("Unexpected health response: %+v", health)
	}
}

func TestEncodeDecodeEndpoints(t *testing.T) {
	server := setupTestServer("1")
	defer server.Close()

	img := testImage()
	exr := encodeImage(t, server.URL, img)

	resp, err := http.Post(server.URL+"/api/v1/decode", ContentTypeEXR, bytes.NewReader(exr))
	if err != nil {
		t.Fatalf("Failed to make request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}

	var got exrplanes.Image
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if got.Width != 3 || got.Height != 2 {
		t.Fatalf("Unexpected dims %dx%d", got.Width, got.Height)
	}
	for i, v := range img.R.Data {
		if got.R.Data[i] != v || got.G.Data[i] != img.G.Data[i] || got.A.Data[i] != 1 {
			t.Fatalf("sample %d: got r=%v g=%v a=%v", i, got.R.Data[i], got.G.Data[i], got.A.Data[i])
		}
	}
}

func TestInfoEndpoint(t *testing.T) {
	for toggle, want := range map[string]string{"": "ZIPS", "1": "ZIP"} {
		server := setupTestServer(toggle)
		exr := encodeImage(t, server.URL, testImage())

		resp, err := http.Post(server.URL+"/api/v1/info", ContentTypeEXR, bytes.NewReader(exr))
		if err != nil {
			t.Fatalf("Failed to make request: %v", err)
		}

		var info exrplanes.Info
		err = json.NewDecoder(resp.Body).Decode(&info)
		resp.Body.Close()
		server.Close()
		if err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}

		if info.Compression != want {
			t.Errorf("toggle %q: expected %s, got %s", toggle, want, info.Compression)
		}
		if info.Width != 3 || info.Height != 2 || !info.HasAlpha || len(info.Channels) != 4 {
			t.Errorf("Unexpected info %+v", info)
		}
	}
}

func TestEncodeErrors(t *testing.T) {
	server := setupTestServer("")
	defer server.Close()

	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{
			name:   "invalid json",
			body:   `{"width":`,
			status: http.StatusBadRequest,
			code:   "INVALID_JSON",
		},
		{
			name:   "missing planes",
			body:   `{"width":1,"height":1,"r":{"rows":1,"cols":1,"data":[0]}}`,
			status: http.StatusUnprocessableEntity,
			code:   "DIMENSION_MISMATCH",
		},
		{
			name: "wrong shape",
			body: `{"width":2,"height":1,` +
				`"r":{"rows":1,"cols":2,"data":[0,0]},"g":{"rows":1,"cols":2,"data":[0,0]},` +
				`"b":{"rows":1,"cols":2,"data":[0,0]},"a":{"rows":2,"cols":1,"data":[0,0]}}`,
			status: http.StatusUnprocessableEntity,
			code:   "DIMENSION_MISMATCH",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Post(server.URL+"/api/v1/encode", "application/json", strings.NewReader(tt.body))
			if err != nil {
				t.Fatalf("Failed to make request: %v", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != tt.status {
				t.Errorf("Expected status %d, got %d", tt.status, resp.StatusCode)
			}
			var errResp ErrorResponse
			if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil {
				t.Fatalf("Failed to decode error response: %v", err)
			}
			if errResp.Error != tt.code {
				t.Errorf("Expected error %s, got %s (%s)", tt.code, errResp.Error, errResp.Message)
			}
			if errResp.RequestID == "" {
				t.Error("Expected request ID in error response")
			}
		})
	}
}

func TestDecodeErrors(t *testing.T) {
	server := setupTestServer("")
	defer server.Close()

	resp, err := http.Post(server.URL+"/api/v1/decode", ContentTypeEXR, strings.NewReader("not an exr file"))
	if err != nil {
		t.Fatalf("Failed to make request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", resp.StatusCode)
	}
	var errResp ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil {
		t.Fatalf("Failed to decode error response: %v", err)
	}
	if errResp.Error != "DECODE_ERROR" || !strings.HasPrefix(errResp.Message, "OpenEXR read error: ") {
		t.Errorf("Unexpected error response %+v", errResp)
	}

	empty, err := http.Post(server.URL+"/api/v1/info", ContentTypeEXR, http.NoBody)
	if err != nil {
		t.Fatalf("Failed to make request: %v", err)
	}
	empty.Body.Close()
	if empty.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected status 400 for empty body, got %d", empty.StatusCode)
	}
}

func TestBodyLimit(t *testing.T) {
	s := NewServer(Config{MaxBodyBytes: 16})
	server := httptest.NewServer(s.Router())
	defer server.Close()

	resp, err := http.Post(server.URL+"/api/v1/decode", ContentTypeEXR, bytes.NewReader(make([]byte, 64)))
	if err != nil {
		t.Fatalf("Failed to make request: %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusRequestEntityTooLarge {
		t.Errorf("Expected status 413, got %d", resp.StatusCode)
	}
}

func infinityEXR(t *testing.T) []byte {
	t.Helper()
	box := exrcodec.NewBox(2, 1)
	h := exrcodec.NewHeader(2, 1)
	fb := exrcodec.NewFrameBuffer()
	for _, name := range []string{"R", "G", "B"} {
		h.Channels.Insert(exrcodec.Channel{Name: name, Type: exrcodec.PixelHalf})
		fb.Insert(name, exrcodec.NewSlice([]float32{float32(math.Inf(1)), 1}, box))
	}

	path := filepath.Join(t.TempDir(), "inf.exr")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	w, err := exrcodec.NewWriter(f, h)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.WritePixels(fb, 1); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func TestDecodeNonFiniteSamples(t *testing.T) {
	server := setupTestServer("")
	defer server.Close()

	resp, err := http.Post(server.URL+"/api/v1/decode", ContentTypeEXR, bytes.NewReader(infinityEXR(t)))
	if err != nil {
		t.Fatalf("Failed to make request: %v", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", resp.StatusCode, body)
	}
	if !bytes.Contains(body, []byte(`"data":["+Inf",1]`)) {
		t.Fatalf("Expected +Inf token in %s", body)
	}

	var img exrplanes.Image
	if err := json.Unmarshal(body, &img); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if !math.IsInf(img.G.Data[0], 1) || img.G.Data[1] != 1 || img.A.Data[0] != 1 {
		t.Errorf("Unexpected planes %+v", img)
	}
}

func TestDecodePixelBudget(t *testing.T) {
	s := NewServer(Config{MaxPixels: 1})
	server := httptest.NewServer(s.Router())
	defer server.Close()

	resp, err := http.Post(server.URL+"/api/v1/decode", ContentTypeEXR, bytes.NewReader(infinityEXR(t)))
	if err != nil {
		t.Fatalf("Failed to make request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusRequestEntityTooLarge {
		t.Errorf("Expected status 413, got %d", resp.StatusCode)
	}
	var errResp ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil {
		t.Fatalf("Failed to decode error response: %v", err)
	}
	if errResp.Error != "IMAGE_TOO_LARGE" {
		t.Errorf("Expected IMAGE_TOO_LARGE, got %s", errResp.Error)
	}
}
