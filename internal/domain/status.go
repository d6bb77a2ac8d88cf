package domain

// RecordStatus is the lifecycle state shared by challenges, user verifications
// and password resets.
type RecordStatus string

const (
	StatusActive     RecordStatus = "active"
	StatusSuperseded RecordStatus = "superseded"
	StatusExpired    RecordStatus = "expired"
	StatusConsumed   RecordStatus = "consumed"
)

// Terminal reports whether no further transition is allowed from s.
func (s RecordStatus) Terminal() bool {
	return s != StatusActive
}
