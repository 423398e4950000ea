// internal/workers/data-access/query-application-data/models.go
package queryapplicationdata

type QueryType string

const (
	QueryTypeApplicationDetails QueryType = "application_details"
	QueryTypeApplicationOffers  QueryType = "application_offers"
	QueryTypeApplicationStatus  QueryType = "application_status"
)

type Input struct {
	QueryType     string `json:"queryType"`
	ApplicationID string `json:"applicationId"`
}

type Output struct {
	Data               interface{} `json:"data"`
	RowCount           int         `json:"rowCount"`
	QueryExecutionTime int64       `json:"queryExecutionTime"` // milliseconds
}
