package issues

// IssueRequest is the payload for creating or updating an issue. Update is a
// full replace of these fields, not a partial merge.
type IssueRequest struct {
	Title       string `json:"title" validate:"required" example:"Pothole on Main St"`
	Description string `json:"description" example:"Large pothole near the crosswalk"`
	Date        string `json:"date" example:"2024-05-01"`
	Image       string `json:"image" example:"https://example.com/pothole.jpg"`
	Location    string `json:"location" example:"Main St & 3rd Ave"`
}

// IssueIDResponse acknowledges a mutation with the affected issue id.
type IssueIDResponse struct {
	Message string `json:"message" example:"Issue created successfully"`
	IssueID int64  `json:"issue_id" example:"1"`
}
