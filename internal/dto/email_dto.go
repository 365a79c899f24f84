package dto

type UpsertTemplateRequest struct {
	Name      string   `json:"name"`
	Subject   string   `json:"subject"`
	HTML      string   `json:"html"`
	Variables []string `json:"variables"`
}

// BroadcastRequest sends either a stored template (TemplateID) or ad hoc
// subject+HTML to every eligible recipient. Promotional sends respect
// marketing_opt_in; transactional ones do not.
type BroadcastRequest struct {
	TemplateID  string            `json:"template_id,omitempty"`
	Subject     string            `json:"subject,omitempty"`
	HTML        string            `json:"html,omitempty"`
	Variables   map[string]string `json:"variables,omitempty"`
	Promotional bool              `json:"promotional"`
}

type BroadcastResponse struct {
	Success bool   `json:"success"`
	Sent    int    `json:"sent"`
	Failed  int    `json:"failed"`
	Message string `json:"message,omitempty"`
}

type PreviewTemplateRequest struct {
	TemplateID string            `json:"template_id"`
	Variables  map[string]string `json:"variables,omitempty"`
}

type PreviewTemplateResponse struct {
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}
