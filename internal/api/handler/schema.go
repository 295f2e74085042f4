package handler

// Request payloads are validated once here at ingress; the core services only
// ever see the typed, checked values.

type registerIdentityRequest struct {
	Phone  string `json:"phone"   validate:"required,numeric"`
	ChatID int64  `json:"chat_id" validate:"required"`
}

type addAdminRequest struct {
	Username string `json:"username" validate:"required"`
}

type addLinkRequest struct {
	Name string `json:"name" validate:"required"`
	URL  string `json:"url"  validate:"required,url"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type linkResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

type dispatchResponse struct {
	Outcome string `json:"outcome"`
	Detail  string `json:"detail,omitempty"`
}
