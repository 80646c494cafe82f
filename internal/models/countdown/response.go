package models

import "time"

type CountdownResponse struct {
	Target   time.Time `json:"target"`
	Days     int64     `json:"days"`
	Hours    int64     `json:"hours"`
	Minutes  int64     `json:"minutes"`
	Seconds  int64     `json:"seconds"`
	Finished bool      `json:"finished"`
}
