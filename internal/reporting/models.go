package reporting

// AdminStats is the platform-wide dashboard snapshot.
type AdminStats struct {
	TotalUsers  int `json:"totalUsers"`
	TotalAgents int `json:"totalAgents"`

	TotalCustomers     int `json:"totalCustomers"`
	PendingCustomers   int `json:"pendingCustomers"`
	ContactedCustomers int `json:"contactedCustomers"`
	CompletedCustomers int `json:"completedCustomers"`

	TotalCallRecords     int `json:"totalCallRecords"`
	SuccessfulCallCount  int `json:"successfulCalls"`
	TotalCallMinutes     int `json:"totalCallMinutes"`
	RecordedCallCount    int `json:"recordedCalls"`
	FollowUpsOutstanding int `json:"followUpsOutstanding"`

	TotalCalls     int `json:"totalCalls"`
	PendingCalls   int `json:"pendingCalls"`
	CompletedCalls int `json:"completedCalls"`
	InReviewCalls  int `json:"inReviewCalls"`
	OpenCalls      int `json:"openCalls"`

	TotalFeedback int     `json:"totalFeedback"`
	AverageRating float64 `json:"averageRating"`
}

// AgentStats is the per-agent dashboard snapshot.
type AgentStats struct {
	UserID string `json:"userId"`

	AssignedCustomers  int `json:"assignedCustomers"`
	PendingCustomers   int `json:"pendingCustomers"`
	ContactedCustomers int `json:"contactedCustomers"`
	CompletedCustomers int `json:"completedCustomers"`

	CallRecords      int `json:"callRecords"`
	SuccessfulCalls  int `json:"successfulCalls"`
	TotalCallMinutes int `json:"totalCallMinutes"`

	AssignedCalls    int `json:"assignedCalls"`
	PendingCalls     int `json:"pendingCalls"`
	CompletedCalls   int `json:"completedCalls"`
	SubmittedReports int `json:"submittedReports"`
}
