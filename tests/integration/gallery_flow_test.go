package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"os"
	"testing"
	"time"
)

// TestGalleryLifecycle runs the full register -> login -> upload -> reorder
// -> delete flow against a live server. The cookie jar carries the session.
func TestGalleryLifecycle(t *testing.T) {
	baseURL := os.Getenv("INTEGRATION_BASE_URL")
	if baseURL == "" {
		t.Skip("INTEGRATION_BASE_URL not set; skipping integration test")
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookie jar: %v", err)
	}
	client := &http.Client{Timeout: 10 * time.Second, Jar: jar}

	username := fmt.Sprintf("it_user_%d", time.Now().UnixNano())
	email := username + "@example.com"
	password := "Passw0rd!"

	// 1. Register
	status, _, err := postJSON(client, baseURL+"/user/register", map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	})
	if err != nil || status != http.StatusCreated {
		t.Fatalf("register failed: status=%d err=%v", status, err)
	}

	// 2. Login; the session cookie lands in the jar.
	status, _, err = postJSON(client, baseURL+"/user/login", map[string]string{
		"identifier": email,
		"password":   password,
	})
	if err != nil || status != http.StatusOK {
		t.Fatalf("login failed: status=%d err=%v", status, err)
	}

	// 3. Upload two images with titles.
	ids := uploadTwo(t, client, baseURL, []string{"sunset", "dawn"})
	if len(ids) != 2 {
		t.Fatalf("expected 2 created images, got %d", len(ids))
	}

	// 4. Listing returns them in upload order.
	images := listImages(t, client, baseURL)
	if len(images) != 2 || images[0].Title != "sunset" || images[1].Title != "dawn" {
		t.Fatalf("unexpected initial order: %+v", images)
	}

	// 5. Swap and verify the new order.
	reorderBody, _ := json.Marshal(map[string]any{
		"updates": []map[string]any{
			{"id": ids[0], "order": 1},
			{"id": ids[1], "order": 0},
		},
	})
	req, _ := http.NewRequest(http.MethodPut, baseURL+"/images/reorder", bytes.NewBuffer(reorderBody))
	req.Header.Set("Content-Type", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("reorder request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("reorder failed: status=%d", resp.StatusCode)
	}

	images = listImages(t, client, baseURL)
	if images[0].Title != "dawn" || images[1].Title != "sunset" {
		t.Fatalf("reorder not reflected: %+v", images)
	}

	// 6. Delete one; exactly the other remains.
	req, _ = http.NewRequest(http.MethodDelete, fmt.Sprintf("%s/images/%d", baseURL, ids[0]), nil)
	resp, err = client.Do(req)
	if err != nil {
		t.Fatalf("delete request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete failed: status=%d", resp.StatusCode)
	}

	images = listImages(t, client, baseURL)
	if len(images) != 1 || images[0].Title != "dawn" {
		t.Fatalf("unexpected gallery after delete: %+v", images)
	}

	// 7. Deleting again reports not-found.
	req, _ = http.NewRequest(http.MethodDelete, fmt.Sprintf("%s/images/%d", baseURL, ids[0]), nil)
	resp, err = client.Do(req)
	if err != nil {
		t.Fatalf("second delete request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("second delete expected 404, got %d", resp.StatusCode)
	}
}

type imageRecord struct {
	ID    uint64 `json:"id"`
	Title string `json:"title"`
	Order int    `json:"order"`
}

func postJSON(client *http.Client, url string, body any) (int, []byte, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return 0, nil, err
	}
	req, _ := http.NewRequest(http.MethodPost, url, bytes.NewBuffer(data))
	req.Header.Set("Content-Type", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	out, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, out, nil
}

func uploadTwo(t *testing.T, client *http.Client, baseURL string, titles []string) []uint64 {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for i := range titles {
		part, err := w.CreateFormFile("images", fmt.Sprintf("img-%d.png", i))
		if err != nil {
			t.Fatalf("form file: %v", err)
		}
		if _, err := part.Write([]byte("integration image bytes")); err != nil {
			t.Fatalf("write part: %v", err)
		}
	}
	titlesJSON, _ := json.Marshal(titles)
	if err := w.WriteField("titles", string(titlesJSON)); err != nil {
		t.Fatalf("titles field: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req, _ := http.NewRequest(http.MethodPost, baseURL+"/images/upload", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("upload request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		data, _ := io.ReadAll(resp.Body)
		t.Fatalf("upload failed: status=%d body=%s", resp.StatusCode, string(data))
	}

	var created []imageRecord
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode upload response: %v", err)
	}
	ids := make([]uint64, len(created))
	for i, c := range created {
		ids[i] = c.ID
	}
	return ids
}

func listImages(t *testing.T, client *http.Client, baseURL string) []imageRecord {
	t.Helper()
	resp, err := client.Get(baseURL + "/images")
	if err != nil {
		t.Fatalf("list request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list failed: status=%d", resp.StatusCode)
	}
	var images []imageRecord
	if err := json.NewDecoder(resp.Body).Decode(&images); err != nil {
		t.Fatalf("decode list response: %v", err)
	}
	return images
}
