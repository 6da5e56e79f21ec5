// Command-line stress test that simulates concurrent gallery sessions
// (register -> login -> upload -> reorder -> delete) against a running API
// and produces a CSV report.
package main

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"os"
	"sync"
	"time"
)

var (
	baseURL     = flag.String("base-url", "http://127.0.0.1:8080", "API base URL")
	sessions    = flag.Int("sessions", 10, "number of concurrent user sessions")
	imagesPer   = flag.Int("images", 4, "images uploaded per session")
	reportPath  = flag.String("report", "loadtest_report.csv", "CSV report output path")
	httpTimeout = flag.Duration("timeout", 10*time.Second, "per-request timeout")
)

// flowResult summarizes one full session for the report.
type flowResult struct {
	User      string
	Uploaded  int
	Reordered bool
	Deleted   bool
	Duration  time.Duration
	Err       string
}

// session is one scripted user with its own cookie jar.
type session struct {
	client *http.Client
	name   string
}

func newSession(name string) (*session, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	return &session{
		client: &http.Client{Timeout: *httpTimeout, Jar: jar},
		name:   name,
	}, nil
}

// postJSON serializes a JSON body and sends a POST request.
func (s *session) postJSON(path string, body any) (int, []byte, error) {
	var buf []byte
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return 0, nil, err
		}
		buf = b
	}
	req, _ := http.NewRequest(http.MethodPost, *baseURL+path, bytes.NewBuffer(buf))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return s.do(req)
}

func (s *session) do(req *http.Request) (int, []byte, error) {
	resp, err := s.client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, data, nil
}

func (s *session) register(email, password string) error {
	status, data, err := s.postJSON("/user/register", map[string]string{
		"username": s.name,
		"email":    email,
		"password": password,
	})
	if err != nil {
		return err
	}
	// 400 means the account already exists from a previous run; acceptable.
	if status != http.StatusCreated && status != http.StatusBadRequest {
		return fmt.Errorf("register status %d body=%s", status, string(data))
	}
	return nil
}

func (s *session) login(email, password string) error {
	status, data, err := s.postJSON("/user/login", map[string]string{
		"identifier": email,
		"password":   password,
	})
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("login status %d body=%s", status, string(data))
	}
	return nil
}

// tinyPNG is a 1x1 transparent PNG, enough to exercise the upload path.
var tinyPNG = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d,
	0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4, 0x89, 0x00, 0x00, 0x00,
	0x0d, 0x49, 0x44, 0x41, 0x54, 0x78, 0x9c, 0x62, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0d, 0x0a, 0x2d, 0xb4, 0x00, 0x00, 0x00, 0x00, 0x49,
	0x45, 0x4e, 0x44, 0xae, 0x42, 0x60, 0x82,
}

// uploadImages posts n files plus a titles array and returns the record ids.
func (s *session) uploadImages(n int) ([]uint64, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	titles := make([]string, 0, n)
	for i := 0; i < n; i++ {
		part, err := w.CreateFormFile("images", fmt.Sprintf("img-%d.png", i))
		if err != nil {
			return nil, err
		}
		if _, err := part.Write(tinyPNG); err != nil {
			return nil, err
		}
		titles = append(titles, fmt.Sprintf("%s image %d", s.name, i))
	}
	titlesJSON, _ := json.Marshal(titles)
	if err := w.WriteField("titles", string(titlesJSON)); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	req, _ := http.NewRequest(http.MethodPost, *baseURL+"/images/upload", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	status, data, err := s.do(req)
	if err != nil {
		return nil, err
	}
	if status != http.StatusCreated {
		return nil, fmt.Errorf("upload status %d body=%s", status, string(data))
	}

	var created []struct {
		ID uint64 `json:"id"`
	}
	if err := json.Unmarshal(data, &created); err != nil {
		return nil, err
	}
	ids := make([]uint64, len(created))
	for i, c := range created {
		ids[i] = c.ID
	}
	return ids, nil
}

// reverse flips the gallery order through the reorder endpoint.
func (s *session) reverse(ids []uint64) error {
	updates := make([]map[string]any, len(ids))
	for i, id := range ids {
		updates[i] = map[string]any{"id": id, "order": len(ids) - 1 - i}
	}
	data, _ := json.Marshal(map[string]any{"updates": updates})
	req, _ := http.NewRequest(http.MethodPut, *baseURL+"/images/reorder", bytes.NewBuffer(data))
	req.Header.Set("Content-Type", "application/json")
	status, body, err := s.do(req)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("reorder status %d body=%s", status, string(body))
	}
	return nil
}

func (s *session) deleteImage(id uint64) error {
	req, _ := http.NewRequest(http.MethodDelete, fmt.Sprintf("%s/images/%d", *baseURL, id), nil)
	status, body, err := s.do(req)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("delete status %d body=%s", status, string(body))
	}
	return nil
}

// runFlow drives one complete session and reports what happened.
func runFlow(idx int) flowResult {
	start := time.Now()
	name := fmt.Sprintf("lt_user_%d_%d", idx, time.Now().UnixNano()%1000000)
	email := name + "@loadtest.local"
	password := "LoadTest123!"

	res := flowResult{User: name}
	fail := func(err error) flowResult {
		res.Err = err.Error()
		res.Duration = time.Since(start)
		return res
	}

	s, err := newSession(name)
	if err != nil {
		return fail(err)
	}
	if err := s.register(email, password); err != nil {
		return fail(err)
	}
	if err := s.login(email, password); err != nil {
		return fail(err)
	}
	ids, err := s.uploadImages(*imagesPer)
	if err != nil {
		return fail(err)
	}
	res.Uploaded = len(ids)
	if err := s.reverse(ids); err != nil {
		return fail(err)
	}
	res.Reordered = true
	if len(ids) > 0 {
		if err := s.deleteImage(ids[0]); err != nil {
			return fail(err)
		}
		res.Deleted = true
	}
	res.Duration = time.Since(start)
	return res
}

func writeReport(path string, results []flowResult) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()
	if err := w.Write([]string{"user", "uploaded", "reordered", "deleted", "duration_ms", "error"}); err != nil {
		return err
	}
	for _, r := range results {
		record := []string{
			r.User,
			fmt.Sprintf("%d", r.Uploaded),
			fmt.Sprintf("%t", r.Reordered),
			fmt.Sprintf("%t", r.Deleted),
			fmt.Sprintf("%d", r.Duration.Milliseconds()),
			r.Err,
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	return nil
}

func main() {
	flag.Parse()

	results := make([]flowResult, *sessions)
	var wg sync.WaitGroup
	for i := 0; i < *sessions; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			results[idx] = runFlow(idx)
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, r := range results {
		if r.Err == "" {
			ok++
		}
	}
	log.Printf("sessions=%d succeeded=%d failed=%d", *sessions, ok, *sessions-ok)

	if err := writeReport(*reportPath, results); err != nil {
		log.Fatalf("write report failed: %v", err)
	}
	log.Printf("report written to %s", *reportPath)
}
