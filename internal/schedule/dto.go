package schedule

// SaveHoursDTO is the JSON form of a grid submission.
type SaveHoursDTO struct {
	ScheduleID int64   `json:"schedule_id"`
	Entries    []Entry `json:"entries"`
}

type CloseDTO struct {
	ScheduleID int64 `json:"schedule_id"`
}
