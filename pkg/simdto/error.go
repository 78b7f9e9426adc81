package simdto

// DomainError is an authority-side failure surfaced to the client.
type DomainError struct {
	Code      string
	Message   string
	Status    int
	Retryable bool
}

func (e DomainError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Code != "" {
		return e.Code
	}
	return "authority error"
}
