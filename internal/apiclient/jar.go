package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// FileJar is a cookie jar for a single API origin whose cookies survive the
// process. The refresh cookie lives here; client code never reads it.
type FileJar struct {
	mu      sync.Mutex
	jar     *cookiejar.Jar
	origin  *url.URL
	path    string
	cookies map[string]storedCookie
}

type storedCookie struct {
	Name    string    `json:"name"`
	Value   string    `json:"value"`
	Path    string    `json:"path"`
	Secure  bool      `json:"secure,omitempty"`
	Expires time.Time `json:"expires,omitempty"`
}

func (sc storedCookie) key() string {
	return sc.Name + "\x00" + sc.Path
}

func (sc storedCookie) expired(now time.Time) bool {
	return !sc.Expires.IsZero() && !sc.Expires.After(now)
}

// NewFileJar loads cookies for baseURL from path. A missing file is an empty jar.
func NewFileJar(path, baseURL string) (*FileJar, error) {
	origin, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base url: %w", err)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	j := &FileJar{jar: jar, origin: origin, path: path, cookies: make(map[string]storedCookie)}

	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return j, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading cookie file: %w", err)
	}

	var stored []storedCookie
	if err := json.Unmarshal(raw, &stored); err != nil {
		slog.Warn("discarding unreadable cookie file", "path", path, "error", err)
		return j, nil
	}

	now := time.Now()
	cookies := make([]*http.Cookie, 0, len(stored))
	for _, sc := range stored {
		if sc.expired(now) {
			continue
		}
		if !strings.HasPrefix(sc.Path, "/") {
			sc.Path = "/"
		}
		j.cookies[sc.key()] = sc
		cookies = append(cookies, &http.Cookie{
			Name:    sc.Name,
			Value:   sc.Value,
			Path:    sc.Path,
			Secure:  sc.Secure,
			Expires: sc.Expires,
		})
	}
	jar.SetCookies(origin, cookies)
	return j, nil
}

func (j *FileJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.jar.SetCookies(u, cookies)
	if u.Hostname() != j.origin.Hostname() {
		return
	}

	now := time.Now()
	for _, c := range cookies {
		sc := storedCookie{Name: c.Name, Value: c.Value, Path: c.Path, Secure: c.Secure}
		if !strings.HasPrefix(sc.Path, "/") {
			sc.Path = defaultCookiePath(u.Path)
		}
		switch {
		case c.MaxAge < 0:
			delete(j.cookies, sc.key())
			continue
		case c.MaxAge > 0:
			sc.Expires = now.Add(time.Duration(c.MaxAge) * time.Second)
		default:
			sc.Expires = c.Expires
		}
		if sc.expired(now) {
			delete(j.cookies, sc.key())
			continue
		}
		j.cookies[sc.key()] = sc
	}

	if err := j.persist(now); err != nil {
		slog.Warn("persisting cookies failed", "path", j.path, "error", err)
	}
}

func (j *FileJar) Cookies(u *url.URL) []*http.Cookie {
	return j.jar.Cookies(u)
}

// persist writes every live cookie of the origin, whatever its path.
func (j *FileJar) persist(now time.Time) error {
	stored := make([]storedCookie, 0, len(j.cookies))
	for k, sc := range j.cookies {
		if sc.expired(now) {
			delete(j.cookies, k)
			continue
		}
		stored = append(stored, sc)
	}
	sort.Slice(stored, func(a, b int) bool { return stored[a].key() < stored[b].key() })

	raw, err := json.MarshalIndent(stored, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(j.path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(j.path, raw, 0o600)
}

// defaultCookiePath is the directory of the request path, as browsers scope
// a Set-Cookie without a Path attribute.
func defaultCookiePath(requestPath string) string {
	i := strings.LastIndex(requestPath, "/")
	if i <= 0 {
		return "/"
	}
	return requestPath[:i]
}
