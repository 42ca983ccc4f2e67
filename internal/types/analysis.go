package types

import (
	"time"
)

// AnalysisResult represents the result of one pipeline run
type AnalysisResult struct {
	ID        string           `json:"id"`
	Type      string           `json:"type"`
	Status    string           `json:"status"`
	Rows      int              `json:"rows"`
	Summary   map[string]any   `json:"summary,omitempty"`
	Metadata  AnalysisMetadata `json:"metadata"`
	Timestamp time.Time        `json:"timestamp"`
	Duration  time.Duration    `json:"duration"`
	Error     string           `json:"error,omitempty"`
}

// AnalysisMetadata contains metadata about the analysis
type AnalysisMetadata struct {
	InputFiles  []string       `json:"input_files"`
	OutputFiles []string       `json:"output_files"`
	Parameters  map[string]any `json:"parameters"`
	Query       string         `json:"query,omitempty"`
	Version     string         `json:"version"`
}

// Analysis type identifiers
const (
	AnalysisReduce    = "reduce"
	AnalysisCorrelate = "correlate"
	AnalysisMetrics   = "spectroscopy_metrics"
	AnalysisHZ        = "habitable_zone"
	AnalysisSchedule  = "schedule"
	AnalysisSpectrum  = "spectrum_conversion"
)

// NewAnalysisResult starts a result record for the given analysis type
func NewAnalysisResult(analysisType string, inputs ...string) *AnalysisResult {
	now := time.Now()
	return &AnalysisResult{
		ID:     analysisType + "_" + now.Format("20060102T150405"),
		Type:   analysisType,
		Status: "running",
		Metadata: AnalysisMetadata{
			InputFiles: inputs,
			Parameters: map[string]any{},
			Version:    "1.0.0",
		},
		Summary:   map[string]any{},
		Timestamp: now,
	}
}

// Complete marks the result finished and records the elapsed time
func (r *AnalysisResult) Complete(rows int) *AnalysisResult {
	r.Status = "completed"
	r.Rows = rows
	r.Duration = time.Since(r.Timestamp)
	return r
}

// Fail marks the result failed
func (r *AnalysisResult) Fail(err error) *AnalysisResult {
	r.Status = "failed"
	if err != nil {
		r.Error = err.Error()
	}
	r.Duration = time.Since(r.Timestamp)
	return r
}

// AddOutput registers a written file
func (r *AnalysisResult) AddOutput(path string) {
	r.Metadata.OutputFiles = append(r.Metadata.OutputFiles, path)
}
