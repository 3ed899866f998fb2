// Package vaultclient fetches signing key documents from a Vault KV v2 mount.
package vaultclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"revix/internal/domain"
)

const maxResponseBytes = 1 << 20

// KeyDocument is the secret data stored for the signing key, plus the KV
// version Vault served it from.
type KeyDocument struct {
	Alg           string `json:"alg"`
	PrivateKeyHex string `json:"private_key_hex"`
	Version       int    `json:"-"`
}

type kvResponse struct {
	Data struct {
		Data     *KeyDocument `json:"data"`
		Metadata struct {
			Version      int    `json:"version"`
			DeletionTime string `json:"deletion_time"`
			Destroyed    bool   `json:"destroyed"`
		} `json:"metadata"`
	} `json:"data"`
}

type Client struct {
	addr       string
	token      string
	httpClient *http.Client
}

func New(addr, token string) *Client {
	return &Client{
		addr:       strings.TrimRight(addr, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// ReadSigningKey reads path, a KV v2 data path such as
// secret/data/revix/signing. Version 0 asks for the current version. A
// deleted or destroyed version is reported as domain.ErrNotFound.
func (c *Client) ReadSigningKey(ctx context.Context, path string, version int) (KeyDocument, error) {
	if c == nil || c.addr == "" || c.token == "" {
		return KeyDocument{}, errors.New("vault addr or token missing")
	}
	path = strings.Trim(path, "/")
	if path == "" {
		return KeyDocument{}, errors.New("vault path is required")
	}
	endpoint := c.addr + "/v1/" + path
	if version > 0 {
		endpoint += "?" + url.Values{"version": {strconv.Itoa(version)}}.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return KeyDocument{}, err
	}
	req.Header.Set("X-Vault-Token", c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return KeyDocument{}, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return KeyDocument{}, fmt.Errorf("vault %s: %w", path, domain.ErrNotFound)
	case resp.StatusCode != http.StatusOK:
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return KeyDocument{}, fmt.Errorf("vault %s: status %d", path, resp.StatusCode)
	}

	var kv kvResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&kv); err != nil {
		return KeyDocument{}, fmt.Errorf("vault %s: decode response: %w", path, err)
	}
	meta := kv.Data.Metadata
	if meta.Destroyed || meta.DeletionTime != "" {
		return KeyDocument{}, fmt.Errorf("vault %s version %d deleted: %w", path, meta.Version, domain.ErrNotFound)
	}
	if kv.Data.Data == nil {
		return KeyDocument{}, fmt.Errorf("vault %s: response has no secret data", path)
	}
	doc := *kv.Data.Data
	doc.Version = meta.Version
	return doc, nil
}
