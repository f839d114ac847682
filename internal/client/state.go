package client

import "fmt"

// Status is the visitor-facing phase of the toggle widget.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusConverted
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusConverted:
		return "converted"
	case StatusError:
		return "error"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// State is a snapshot of the widget; Message is set only in StatusError.
type State struct {
	Status  Status
	Message string
}

func (s State) String() string {
	if s.Status == StatusError {
		return fmt.Sprintf("error(%s)", s.Message)
	}
	return s.Status.String()
}

// LoadingMessages rotate in the loading indicator while a conversion runs.
var LoadingMessages = []string{
	"Analyzing article structure...",
	"Applying AP style rules...",
	"Restructuring paragraphs...",
	"Adding proper attribution...",
	"Formatting quotes and sources...",
	"Finalizing AP conversion...",
}

const (
	msgTimeout    = "Conversion timed out. Please try again."
	msgServer     = "Server error. Please try again later."
	msgConnection = "Connection failed. Check your internet connection."
	msgNetwork    = "Network error occurred"
)
