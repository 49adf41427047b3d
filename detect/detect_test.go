package detect

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newStubInference(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/predict", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestDetectParsesDetections(t *testing.T) {
	srv := newStubInference(t, http.StatusOK, `{"detections":[
		{"label":"Tylenol500","box":[1,2,3,4]},
		{"label":"Advil200","box":[10.5,20.5,30.5,40.5]}
	]}`)

	d := NewHTTPDetector(srv.URL)
	detections, err := d.Detect(context.Background(), []byte("image-bytes"))
	if err != nil {
		t.Fatalf("detect: %v", err)
	}

	assert.Len(t, detections, 2)
	assert.Equal(t, "Tylenol500", detections[0].Label)
	assert.Equal(t, Box{X1: 1, Y1: 2, X2: 3, Y2: 4}, detections[0].Box)
	assert.Equal(t, Box{X1: 10.5, Y1: 20.5, X2: 30.5, Y2: 40.5}, detections[1].Box)
}

func TestDetectZeroDetectionsIsNotAnError(t *testing.T) {
	srv := newStubInference(t, http.StatusOK, `{"detections":[]}`)

	d := NewHTTPDetector(srv.URL)
	detections, err := d.Detect(context.Background(), []byte("image-bytes"))
	assert.NoError(t, err)
	assert.Empty(t, detections)
}

func TestDetectSkipsMalformedDetections(t *testing.T) {
	// One bad box and one missing label must not abort the response.
	srv := newStubInference(t, http.StatusOK, `{"detections":[
		{"label":"Tylenol500","box":[1,2,3]},
		{"label":"","box":[1,2,3,4]},
		{"label":"Advil200","box":[5,6,7,8]}
	]}`)

	d := NewHTTPDetector(srv.URL)
	detections, err := d.Detect(context.Background(), []byte("image-bytes"))
	if err != nil {
		t.Fatalf("detect: %v", err)
	}

	assert.Len(t, detections, 1)
	assert.Equal(t, "Advil200", detections[0].Label)
}

func TestDetectNonOKStatus(t *testing.T) {
	srv := newStubInference(t, http.StatusInternalServerError, `model crashed`)

	d := NewHTTPDetector(srv.URL)
	_, err := d.Detect(context.Background(), []byte("image-bytes"))
	assert.Error(t, err)
}

func TestGroupLabels(t *testing.T) {
	detections := []Detection{
		{Label: "Tylenol500"},
		{Label: "Tylenol500"},
		{Label: "Advil200"},
	}
	grouped := GroupLabels(detections)
	assert.Equal(t, map[string]int{"Tylenol500": 2, "Advil200": 1}, grouped)

	assert.Empty(t, GroupLabels(nil))
}
