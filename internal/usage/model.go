package usage

import "time"

// Usage is a user's AI credit consumption for the current window.
type Usage struct {
	Plan     string    `json:"plan"`
	Limit    int       `json:"limit"`
	Used     int       `json:"used"`
	ResetsAt time.Time `json:"resetsAt"`
}

// Remaining returns the credits left in the window.
func (u Usage) Remaining() int {
	if u.Used >= u.Limit {
		return 0
	}
	return u.Limit - u.Used
}

const defaultPlan = "Free"

// Policy sets the credit budget every user starts with.
type Policy struct {
	Limit  int
	Period time.Duration
}

func (p Policy) fresh(now time.Time) Usage {
	return Usage{
		Plan:     defaultPlan,
		Limit:    p.Limit,
		ResetsAt: now.Add(p.Period),
	}
}

// roll starts a new window when the current one has ended.
func (p Policy) roll(u Usage, now time.Time) (Usage, bool) {
	if now.Before(u.ResetsAt) {
		return u, false
	}
	u.Used = 0
	u.Limit = p.Limit
	u.ResetsAt = now.Add(p.Period)
	return u, true
}
