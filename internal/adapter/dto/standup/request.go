package standup

// CreateStandupRequest represents the request to register a standup
type CreateStandupRequest struct {
	LabID string `json:"lab_id" validate:"required,uuid"`
	Date  string `json:"date" validate:"required,datetime=2006-01-02"`
}

// UpdateStandupRequest represents the request to update a standup
type UpdateStandupRequest struct {
	Date string `json:"date" validate:"required,datetime=2006-01-02"`
}

// ListStandupsRequest represents query parameters for lab-scoped listing
type ListStandupsRequest struct {
	Page      int    `query:"page" validate:"omitempty,min=1"`
	PageSize  int    `query:"page_size" validate:"omitempty,min=1,max=100"`
	OrderBy   string `query:"order_by" validate:"omitempty,oneof=date created_at"`
	SortOrder string `query:"sort_order" validate:"omitempty,oneof=asc desc"`
}

// UploadAudioRequest represents a base64 JSON audio upload. An omitted MIME
// type is allowed; the stored file then defaults to webm.
type UploadAudioRequest struct {
	Audio    string `json:"audio" validate:"required"`
	MimeType string `json:"mime_type,omitempty" validate:"omitempty,audiomime"`
}

// UpdateTranscriptRequest represents a partial transcript archive update
type UpdateTranscriptRequest struct {
	Transcript *string `json:"transcript,omitempty"`
	Language   *string `json:"language,omitempty" validate:"omitempty,min=2,max=20"`
	Duration   *int    `json:"duration,omitempty" validate:"omitempty,min=0"`
}

// ExtendRetentionRequest represents a retention extension
type ExtendRetentionRequest struct {
	Days int `json:"days" validate:"required,min=1,max=365"`
}

// UpdateStatusRequest toggles an action item or blocker flag
type UpdateStatusRequest struct {
	Done bool `json:"done"`
}

// SearchRequest represents transcript search query parameters
type SearchRequest struct {
	Query          string `query:"q" validate:"required,min=1"`
	LabID          string `query:"lab_id" validate:"omitempty,uuid"`
	Page           int    `query:"page" validate:"omitempty,min=1"`
	PageSize       int    `query:"page_size" validate:"omitempty,min=1,max=100"`
	IncludeExpired bool   `query:"include_expired"`
}
