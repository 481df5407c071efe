package models

import "time"

// ReportStatus enumerates report job states.
type ReportStatus string

const (
	ReportPending   ReportStatus = "Pending"
	ReportCompleted ReportStatus = "Completed"
	ReportFailed    ReportStatus = "Failed"
)

// ReportFormat enumerates supported export formats.
type ReportFormat string

const (
	ReportCSV ReportFormat = "csv"
	ReportPDF ReportFormat = "pdf"
)

// ReportJob tracks an asynchronous payment report export.
type ReportJob struct {
	ID          string       `json:"id"`
	Format      ReportFormat `json:"format"`
	Month       string       `json:"month,omitempty"`
	Year        string       `json:"year,omitempty"`
	Status      ReportStatus `json:"status"`
	FilePath    string       `json:"-"`
	RowCount    int          `json:"row_count"`
	Error       string       `json:"error,omitempty"`
	RequestedBy string       `json:"requested_by"`
	CreatedAt   time.Time    `json:"created_at"`
	CompletedAt *time.Time   `json:"completed_at,omitempty"`
}
