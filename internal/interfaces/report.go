package interfaces

// ReportService renders assessment results as downloadable documents
type ReportService interface {
	// RenderPDF renders the assessment summary as a PDF report
	RenderPDF(view *AssessmentView) ([]byte, error)
}
