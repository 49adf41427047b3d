// Package detect wraps the pretrained pill-detection model behind a typed
// adapter. The model itself runs out of process; this package only turns an
// image into (label, bounding box) pairs and never interprets them.
package detect

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// Box is an axis-aligned bounding box in image-pixel space.
type Box struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

// Detection is one identified object instance: the model's class label and
// where it sits in the image.
type Detection struct {
	Label string `json:"label"`
	Box   Box    `json:"box"`
}

// Detector turns raw image bytes into detections. Implementations must
// return an empty slice, not an error, when nothing is detected.
type Detector interface {
	Detect(ctx context.Context, imageBytes []byte) ([]Detection, error)
}

const defaultInferenceTimeout = 30 * time.Second

// HTTPDetector calls an inference service that runs the model and answers
// with JSON. Construct with NewHTTPDetector and inject it into the record
// workflow; there is no package-level model instance.
type HTTPDetector struct {
	baseURL string
	client  *http.Client
}

// NewHTTPDetector returns a detector posting images to baseURL/predict.
func NewHTTPDetector(baseURL string) *HTTPDetector {
	return &HTTPDetector{
		baseURL: baseURL,
		client:  &http.Client{Timeout: defaultInferenceTimeout},
	}
}

// inferenceResponse mirrors the inference service's wire format. Box comes
// back as a bare [x1,y1,x2,y2] array.
type inferenceResponse struct {
	Detections []struct {
		Label string    `json:"label"`
		Box   []float64 `json:"box"`
	} `json:"detections"`
}

// Detect posts the image and converts the response. A single malformed
// detection (missing label, box not of length 4) is skipped with a warning;
// the rest of the response is still processed.
func (d *HTTPDetector) Detect(ctx context.Context, imageBytes []byte) ([]Detection, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.baseURL+"/predict", bytes.NewReader(imageBytes))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("inference request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("inference service returned %d: %s", resp.StatusCode, body)
	}

	var parsed inferenceResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode inference response: %w", err)
	}

	return convertDetections(parsed), nil
}

func convertDetections(parsed inferenceResponse) []Detection {
	detections := make([]Detection, 0, len(parsed.Detections))
	for i, raw := range parsed.Detections {
		if raw.Label == "" || len(raw.Box) != 4 {
			log.Printf("skipping malformed detection %d: label=%q box_len=%d", i, raw.Label, len(raw.Box))
			continue
		}
		detections = append(detections, Detection{
			Label: raw.Label,
			Box:   Box{X1: raw.Box[0], Y1: raw.Box[1], X2: raw.Box[2], Y2: raw.Box[3]},
		})
	}
	return detections
}

// GroupLabels counts occurrences of each label in a detection list. The
// record response groups the raw, pre-filter labels, so unmatched labels
// still show up in the counts even though they persist no detail row.
func GroupLabels(detections []Detection) map[string]int {
	grouped := make(map[string]int, len(detections))
	for _, d := range detections {
		grouped[d.Label]++
	}
	return grouped
}
