package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const accessKeyHeader = "AccessKey"

// regionHosts maps a storage region code to its API host. The empty code is
// the primary Falkenstein region.
var regionHosts = map[string]string{
	"":    "storage.bunnycdn.com",
	"de":  "storage.bunnycdn.com",
	"ny":  "ny.storage.bunnycdn.com",
	"la":  "la.storage.bunnycdn.com",
	"sg":  "sg.storage.bunnycdn.com",
	"syd": "syd.storage.bunnycdn.com",
}

// BunnyClient talks to the Bunny edge storage HTTP API. All keys are
// interpreted relative to the storage zone root.
type BunnyClient struct {
	httpClient *http.Client
	baseURL    string // https://host/zone/, with trailing slash
	accessKey  string
	zone       string
}

// NewBunnyClient creates a client for one storage zone. region is a region
// code from regionHosts; empty selects the primary region.
func NewBunnyClient(zone, accessKey, region string) (*BunnyClient, error) {
	if strings.TrimSpace(zone) == "" {
		return nil, fmt.Errorf("storage zone name cannot be empty")
	}
	if strings.TrimSpace(accessKey) == "" {
		return nil, fmt.Errorf("access key cannot be empty")
	}
	host, ok := regionHosts[region]
	if !ok {
		return nil, fmt.Errorf("unknown storage region %q", region)
	}

	return &BunnyClient{
		httpClient: &http.Client{Timeout: 10 * time.Minute},
		baseURL:    fmt.Sprintf("https://%s/%s/", host, zone),
		accessKey:  accessKey,
		zone:       zone,
	}, nil
}

// bunnyObject mirrors the JSON the list endpoint returns.
type bunnyObject struct {
	ObjectName      string `json:"ObjectName"`
	Path            string `json:"Path"`
	Length          int64  `json:"Length"`
	IsDirectory     bool   `json:"IsDirectory"`
	Checksum        string `json:"Checksum"`
	ContentType     string `json:"ContentType"`
	StorageZoneName string `json:"StorageZoneName"`
}

// key builds the zone-relative object key. The API reports Path as
// "/<zone>/<dir>/" and ObjectName as the terminal segment.
func (o bunnyObject) key() string {
	rel := strings.TrimPrefix(o.Path, "/"+o.StorageZoneName+"/")
	k := rel + o.ObjectName
	if o.IsDirectory {
		k += "/"
	}
	return k
}

func (c *BunnyClient) List(ctx context.Context, dir string) ([]ObjectMeta, error) {
	if dir != "" && !strings.HasSuffix(dir, "/") {
		dir += "/"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+dir, nil)
	if err != nil {
		return nil, newError("list", dir, err)
	}
	req.Header.Set(accessKeyHeader, c.accessKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, newError("list", dir, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, classifyStatus("list", dir, resp)
	}

	var objects []bunnyObject
	if err := json.NewDecoder(resp.Body).Decode(&objects); err != nil {
		return nil, newError("list", dir, fmt.Errorf("decode listing: %w", err))
	}

	metas := make([]ObjectMeta, 0, len(objects))
	for _, obj := range objects {
		metas = append(metas, ObjectMeta{
			Key:         obj.key(),
			Size:        obj.Length,
			IsDirectory: obj.IsDirectory,
			Checksum:    obj.Checksum,
			ContentType: obj.ContentType,
		})
	}
	return metas, nil
}

func (c *BunnyClient) Upload(ctx context.Context, key string, body io.Reader, size int64, checksum, contentType string, fn ProgressFunc) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+key, newProgressReader(body, fn))
	if err != nil {
		return newError("upload", key, err)
	}
	req.Header.Set(accessKeyHeader, c.accessKey)
	req.ContentLength = size
	if checksum != "" {
		// Server-side content verification; rejected uploads come back
		// as 400 and are never persisted.
		req.Header.Set("Checksum", strings.ToUpper(checksum))
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return newError("upload", key, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusBadRequest && checksum != "" {
		return newError("upload", key, fmt.Errorf("%w: status %d", ErrChecksumMismatch, resp.StatusCode))
	}
	if resp.StatusCode != http.StatusCreated {
		return classifyStatus("upload", key, resp)
	}
	return nil
}

func (c *BunnyClient) Download(ctx context.Context, key string, w io.Writer, fn ProgressFunc) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+key, nil)
	if err != nil {
		return newError("download", key, err)
	}
	req.Header.Set(accessKeyHeader, c.accessKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return newError("download", key, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return classifyStatus("download", key, resp)
	}

	if _, err := io.Copy(newProgressWriter(w, fn), resp.Body); err != nil {
		return newError("download", key, fmt.Errorf("copy body: %w", err))
	}
	return nil
}

func (c *BunnyClient) Delete(ctx context.Context, key string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+key, nil)
	if err != nil {
		return newError("delete", key, err)
	}
	req.Header.Set(accessKeyHeader, c.accessKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return newError("delete", key, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return classifyStatus("delete", key, resp)
	}
	return nil
}

// classifyStatus maps a non-success HTTP response onto the error taxonomy.
func classifyStatus(op, key string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	msg := strings.TrimSpace(string(body))

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return newError(op, key, fmt.Errorf("%w: status %d", ErrAuth, resp.StatusCode))
	case http.StatusNotFound:
		return newError(op, key, ErrNotFound)
	default:
		if msg != "" {
			return newError(op, key, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, msg))
		}
		return newError(op, key, fmt.Errorf("unexpected status %d", resp.StatusCode))
	}
}
