package smclient

// LoginRequest is the body of POST /api/user/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// ChangePasswordRequest is the body of POST /api/user/change_password.
type ChangePasswordRequest struct {
	OldPassword             string `json:"old_password"`
	NewPassword             string `json:"new_password"`
	NewPasswordVerification string `json:"new_password_verification"`
}

// PostJobRequest is the body of POST /api/job.
// Tasks is passed through verbatim; the service defines its shape.
type PostJobRequest struct {
	PublicationDate string `json:"publication_date"`
	ExpirationDate  string `json:"expiration_date"`
	Tasks           any    `json:"tasks"`
}

// TaskRegistration describes a task a backend service offers.
type TaskRegistration struct {
	Name        string
	Description string
	StartURL    string
	CancelURL   string
	Input       any
	Output      any
	// UseRESTCancel sends CancelURL as cancel_rest_url instead of cancel_url.
	UseRESTCancel bool
}

// registerTaskBody is the wire form of TaskRegistration. Exactly one of the
// two cancel fields is sent, even when the URL is empty.
type registerTaskBody struct {
	Name          string `json:"name"`
	Description   string `json:"description"`
	StartURL      string `json:"start_url"`
	Input         any    `json:"input"`
	Output        any    `json:"output"`
	CancelURL     *string `json:"cancel_url,omitempty"`
	CancelRESTURL *string `json:"cancel_rest_url,omitempty"`
}

func (t TaskRegistration) body() registerTaskBody {
	b := registerTaskBody{
		Name:        t.Name,
		Description: t.Description,
		StartURL:    t.StartURL,
		Input:       t.Input,
		Output:      t.Output,
	}
	cancel := t.CancelURL
	if t.UseRESTCancel {
		b.CancelRESTURL = &cancel
	} else {
		b.CancelURL = &cancel
	}
	return b
}

// TaskAvailabilityRequest is the body of PUT /internal/task/:id.
type TaskAvailabilityRequest struct {
	Disabled bool `json:"disabled"`
}

// JobStatusRequest is the body of PUT /internal/job/:id.
type JobStatusRequest struct {
	Status string `json:"status"`
}

// FinishJobRequest is the body of POST /internal/job/:id/finish.
type FinishJobRequest struct {
	Output any `json:"output"`
}
