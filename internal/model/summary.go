package model

// Summary holds the dashboard counts.
type Summary struct {
	TotalEmployees    int                    `json:"total_employees"`
	TotalDepartments  int                    `json:"total_departments"`
	TotalComputers    int                    `json:"total_computers"`
	ComputersByStatus map[ComputerStatus]int `json:"computers_by_status"`
}

// NewSummary returns a summary with every status key present.
func NewSummary() *Summary {
	byStatus := make(map[ComputerStatus]int, len(ComputerStatuses))
	for _, s := range ComputerStatuses {
		byStatus[s] = 0
	}
	return &Summary{ComputersByStatus: byStatus}
}
