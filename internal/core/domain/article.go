package domain

// ExpenseArticle is a dictionary entry splits and distributor requests refer to.
type ExpenseArticle struct {
	ID          string  `json:"id"`
	Code        string  `json:"code"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	IsActive    bool    `json:"isActive"`
	AuditFields
}
