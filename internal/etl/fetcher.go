package etl

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/BartekS5/feedsync/pkg/logger"
	"github.com/BartekS5/feedsync/pkg/models"
)

const (
	userAgent = "feedsync/1.0"
	// Bytes of an error response body kept for the error message.
	errorBodyLimit = 512
	maxLineSize    = 1 << 20
)

func NewHTTPClient(timeout time.Duration) *http.Client {
	tr := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         (&net.Dialer{Timeout: 10 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
		MaxIdleConns:        10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}
	return &http.Client{Timeout: timeout, Transport: tr}
}

// get performs the single GET of a run and returns the body of a 2xx response.
func get(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{Kind: ErrTransport, URL: url, Err: err}
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, &FetchError{Kind: ErrTransport, URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
		return nil, &FetchError{
			Kind:       ErrHTTPStatus,
			URL:        url,
			StatusCode: resp.StatusCode,
			Err:        errors.New(strings.TrimSpace(resp.Status + " " + string(snippet))),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{Kind: ErrTransport, URL: url, Err: fmt.Errorf("reading body: %w", err)}
	}
	return body, nil
}

// LineFetcher fetches a plaintext feed and returns its data lines.
type LineFetcher struct {
	URL    string
	Client *http.Client
}

func NewLineFetcher(url string, client *http.Client) *LineFetcher {
	return &LineFetcher{URL: url, Client: client}
}

func (f *LineFetcher) Fetch(ctx context.Context) ([]string, error) {
	logger.Infof("Extracting data from %s ...", f.URL)

	body, err := get(ctx, f.Client, f.URL)
	if err != nil {
		logger.Errorf("Error during API request: %v", err)
		return nil, err
	}

	lines, err := DataLines(bytes.NewReader(body))
	if err != nil {
		err = &FetchError{Kind: ErrDecode, URL: f.URL, Err: err}
		logger.Errorf("Error reading API response: %v", err)
		return nil, err
	}

	logger.Infof("Successfully extracted %d data records.", len(lines))
	return lines, nil
}

// DataLines splits a plaintext feed into data lines. Lines starting with '#'
// (after leading whitespace) are comments; the first other line is the
// column header. Both are dropped. Blank lines are kept.
func DataLines(r io.Reader) ([]string, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var lines []string
	headerSeen := false
	for sc.Scan() {
		line := sc.Text()
		if strings.HasPrefix(strings.TrimSpace(line), "#") {
			continue
		}
		if !headerSeen {
			headerSeen = true
			continue
		}
		lines = append(lines, line)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

// TriviaFetcher fetches an Open Trivia DB style JSON feed.
type TriviaFetcher struct {
	URL    string
	Client *http.Client
}

func NewTriviaFetcher(url string, client *http.Client) *TriviaFetcher {
	return &TriviaFetcher{URL: url, Client: client}
}

// Fetch returns the raw results of a successful response. A non-zero
// response_code means upstream has no results and yields an empty slice.
// Items are decoded one by one by TriviaNormalizer.
func (f *TriviaFetcher) Fetch(ctx context.Context) ([]json.RawMessage, error) {
	logger.Infof("Extracting data from %s ...", f.URL)

	body, err := get(ctx, f.Client, f.URL)
	if err != nil {
		logger.Errorf("Error during API request: %v", err)
		return nil, err
	}

	var payload models.TriviaResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		err = &FetchError{Kind: ErrDecode, URL: f.URL, Err: err}
		logger.Errorf("Error decoding API response: %v", err)
		return nil, err
	}

	if payload.ResponseCode != 0 {
		logger.Warnf("API returned response_code %d, treating as no results.", payload.ResponseCode)
		return []json.RawMessage{}, nil
	}

	logger.Infof("Successfully extracted %d data records.", len(payload.Results))
	return payload.Results, nil
}
