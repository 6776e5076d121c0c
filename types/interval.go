package types

import "time"

type Interval string

const (
	Day   Interval = "D"
	Week  Interval = "W"
	Month Interval = "M"
)

var IntervalToTime = map[Interval]time.Duration{
	Day:  time.Hour * 24,
	Week: time.Hour * 24 * 7,
}

var ConvertInterval = map[string]Interval{
	"D": Day,
	"W": Week,
	"M": Month,
}
