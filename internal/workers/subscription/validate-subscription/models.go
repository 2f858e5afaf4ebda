// internal/workers/subscription/validate-subscription/models.go
package validatesubscription

type Input struct {
	UserID string `json:"userId"`
}

type Subscription struct {
	UserID    string `json:"userId"`
	Tier      string `json:"tier"`
	ExpiresAt string `json:"expiresAt"`
	IsValid   bool   `json:"isValid"`
}

type Output struct {
	IsValid   bool   `json:"subscriptionValid"`
	UserPlan  string `json:"userPlan"`
	ScansUsed int    `json:"scansUsed"`
	ScanLimit int    `json:"scanLimit"` // 0 means unlimited
}
