package domain

// Todo is the sole persisted entity. Timestamps are RFC3339 UTC strings with
// a Z suffix, served exactly as stored; id is minted server-side and immutable.
type Todo struct {
	ID        string  `json:"id" dynamodbav:"id"`
	Title     string  `json:"title" dynamodbav:"title"`
	DueDate   *string `json:"dueDate" dynamodbav:"dueDate"`
	CreatedAt string  `json:"createdAt" dynamodbav:"createdAt"`
	UpdatedAt string  `json:"updatedAt" dynamodbav:"updatedAt"`

	// Owner context recorded at creation, never mutated.
	OwnerSub      string `json:"ownerSub,omitempty" dynamodbav:"ownerSub,omitempty"`
	OwnerUsername string `json:"ownerUsername,omitempty" dynamodbav:"ownerUsername,omitempty"`
}
