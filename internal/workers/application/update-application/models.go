// internal/workers/application/update-application/models.go
package updateapplication

type Input struct {
	ApplicationID string                 `json:"applicationId"`
	UserID        string                 `json:"userId,omitempty"`
	Updates       map[string]interface{} `json:"updates"`
}

type Output struct {
	Updated       bool   `json:"updated"`
	ApplicationID string `json:"applicationId"`
	UpdatedAt     string `json:"updatedAt"`
}
