package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const userAgent = "dogspotter-classifier/1"

// maxResponseSize caps detector responses; a detection list is small.
const maxResponseSize = 1 << 20

type loadResponse struct {
	Model   string `json:"model"`
	Classes int    `json:"classes"`
}

type detectResponse struct {
	Detections []Detection `json:"detections"`
}

// HTTPDetector talks to an inference server that keeps models in memory:
//
//	POST {base}/v1/models/{model}/load    -> {"model": "...", "classes": 80}
//	POST {base}/v1/models/{model}/detect  multipart "image" -> {"detections": [...]}
type HTTPDetector struct {
	baseURL string
	model   string
	client  *http.Client
}

// NewHTTPLoader returns a Loader that asks the inference server at baseURL
// to load the model and then binds an HTTPDetector to it.
func NewHTTPLoader(baseURL string, client *http.Client) Loader {
	base := strings.TrimRight(baseURL, "/")
	return func(ctx context.Context, model string) (Detector, error) {
		d := &HTTPDetector{baseURL: base, model: model, client: client}
		if err := d.loadModel(ctx); err != nil {
			return nil, err
		}
		return d, nil
	}
}

func (d *HTTPDetector) endpoint(action string) string {
	return fmt.Sprintf("%s/v1/models/%s/%s", d.baseURL, url.PathEscape(d.model), action)
}

func (d *HTTPDetector) loadModel(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.endpoint("load"), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	var out loadResponse
	if err := d.do(req, "load", &out); err != nil {
		return err
	}
	if out.Model != "" && out.Model != d.model {
		return fmt.Errorf("detector loaded %q instead of %q", out.Model, d.model)
	}
	return nil
}

// Detect uploads image as a multipart form and returns the reported boxes.
func (d *HTTPDetector) Detect(ctx context.Context, image []byte) ([]Detection, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("image", "image")
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(image); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.endpoint("detect"), body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	var out detectResponse
	if err := d.do(req, "detect", &out); err != nil {
		return nil, err
	}
	return out.Detections, nil
}

func (d *HTTPDetector) do(req *http.Request, endpoint string, out any) error {
	req.Header.Set("User-Agent", userAgent)

	start := time.Now()
	defer func() {
		detectorDuration.Observe(time.Since(start).Seconds())
	}()

	res, err := d.client.Do(req)
	if err != nil {
		detectorRequests.WithLabelValues(endpoint, "error").Inc()
		return fmt.Errorf("detector %s request failed: %w", endpoint, err)
	}
	defer res.Body.Close()

	detectorRequests.WithLabelValues(endpoint, fmt.Sprint(res.StatusCode)).Inc()
	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("detector %s request failed statusCode=%d", endpoint, res.StatusCode)
	}

	b, err := io.ReadAll(io.LimitReader(res.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("failed to read detector %s response: %w", endpoint, err)
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("failed to parse detector %s response: %w", endpoint, err)
	}
	return nil
}
