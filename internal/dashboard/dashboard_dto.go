package dashboard

import "go-hrms/internal/attendance"

type RosterResponse struct {
	Date    string                   `json:"date"`
	Present []attendance.RosterEntry `json:"present"`
	Absent  []attendance.RosterEntry `json:"absent"`
}

type StatsResponse struct {
	Date    string `json:"date"`
	Present int    `json:"present"`
	Absent  int    `json:"absent"`
	OnLeave int64  `json:"on_leave"`
}
