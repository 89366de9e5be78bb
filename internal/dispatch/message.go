package dispatch

import (
	"fmt"

	json "github.com/goccy/go-json"

	"github.com/KaramelBytes/datalens/internal/analysis"
	"github.com/KaramelBytes/datalens/internal/dataset"
)

// Status is the outcome tag of a worker response.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Request is one aggregation job. Rows and config travel by value in the
// encoded payload; the worker never sees the caller's memory.
type Request struct {
	Seq    uint64               `json:"seq"`
	Data   []dataset.Row        `json:"data"`
	Config analysis.ChartConfig `json:"config"`
}

// Response answers exactly one Request.
type Response struct {
	Seq    uint64                     `json:"seq"`
	Status Status                     `json:"status"`
	Data   []analysis.AggregatedPoint `json:"data,omitempty"`
	Error  string                     `json:"error,omitempty"`
}

func encodeRequest(r Request) ([]byte, error) {
	b, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("encode request %d: %w", r.Seq, err)
	}
	return b, nil
}

func decodeRequest(b []byte) (Request, error) {
	var r Request
	if err := json.Unmarshal(b, &r); err != nil {
		return Request{}, fmt.Errorf("decode request: %w", err)
	}
	return r, nil
}

func encodeResponse(r Response) ([]byte, error) {
	b, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("encode response %d: %w", r.Seq, err)
	}
	return b, nil
}

func decodeResponse(b []byte) (Response, error) {
	var r Response
	if err := json.Unmarshal(b, &r); err != nil {
		return Response{}, fmt.Errorf("decode response: %w", err)
	}
	switch r.Status {
	case StatusSuccess, StatusError:
	default:
		return Response{}, fmt.Errorf("decode response %d: unknown status %q", r.Seq, r.Status)
	}
	return r, nil
}
