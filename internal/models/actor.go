package models

// Actor is the explicit caller identity passed into every service call.
// System-originated work (webhook ingestion, kafka consumers) uses
// SystemActor instead of relying on any ambient current-user state.
type Actor struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	TenantID    string `json:"tenant_id,omitempty"`
}

// SystemActor attributes rows written by automated flows.
var SystemActor = Actor{
	UserID:      "system",
	DisplayName: "System",
}
