// internal/workers/application/export-to-lender/models.go
package exporttolender

type Input struct {
	ApplicationID string `json:"applicationId"`
	LenderID      string `json:"lenderId"`
	UserID        string `json:"userId,omitempty"`
}

type Output struct {
	Exported   bool   `json:"exported"`
	LenderID   string `json:"lenderId"`
	LenderName string `json:"lenderName"`
	EmailSent  bool   `json:"emailSent"`
	ExportedAt string `json:"exportedAt"`
}
