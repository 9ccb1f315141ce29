package identity

import "fmt"

// FetchStatus describes the outcome of the fetch that populated a node.
type FetchStatus string

const (
	// FetchPending indicates the node has been created but not yet populated.
	FetchPending FetchStatus = "pending"

	// FetchSuccess indicates the node was populated by a successful fetch.
	FetchSuccess FetchStatus = "success"

	// FetchFailed indicates the fetch failed; ErrorMessage carries the cause.
	FetchFailed FetchStatus = "failed"
)

// IsValid returns true if the status is one of the defined values.
func (s FetchStatus) IsValid() bool {
	switch s {
	case FetchPending, FetchSuccess, FetchFailed:
		return true
	default:
		return false
	}
}

// String returns the string representation of the status.
func (s FetchStatus) String() string {
	return string(s)
}

// ParseFetchStatus parses a string into a FetchStatus value.
func ParseFetchStatus(s string) (FetchStatus, error) {
	status := FetchStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid fetch status: %s", s)
	}
	return status, nil
}

// Sentiment is an optional tri-state classification of activity content.
// The empty string means no sentiment was assigned.
type Sentiment string

const (
	// SentimentPositive marks content with positive sentiment.
	SentimentPositive Sentiment = "positive"

	// SentimentNegative marks content with negative sentiment.
	SentimentNegative Sentiment = "negative"

	// SentimentNeutral marks content with neutral sentiment.
	SentimentNeutral Sentiment = "neutral"
)

// IsValid returns true for the three defined values or the unset empty string.
func (s Sentiment) IsValid() bool {
	switch s {
	case SentimentPositive, SentimentNegative, SentimentNeutral, "":
		return true
	default:
		return false
	}
}

// String returns the string representation of the sentiment.
func (s Sentiment) String() string {
	return string(s)
}
