package errors

// ErrorCode identifies the category of an application error
type ErrorCode int32

const (
	ErrorCode_UNKNOWN ErrorCode = iota
	ErrorCode_INTERNAL
	ErrorCode_INVALID_ARGUMENT
	ErrorCode_NOT_FOUND
	ErrorCode_ALREADY_EXISTS
	ErrorCode_PERMISSION_DENIED
	ErrorCode_UNAUTHENTICATED
	ErrorCode_FORBIDDEN
	ErrorCode_INVALID_PAYLOAD

	ErrorCode_AUTH_INVALID_TOKEN
	ErrorCode_AUTH_TOKEN_EXPIRED

	ErrorCode_STANDUP_NOT_FOUND
	ErrorCode_STANDUP_INACTIVE
	ErrorCode_STANDUP_PROCESSING_LOCKED

	ErrorCode_AUDIO_INVALID
	ErrorCode_AUDIO_TOO_LARGE
	ErrorCode_AUDIO_STORE_FAILED
	ErrorCode_AUDIO_NOT_FOUND

	ErrorCode_ARCHIVE_NOT_FOUND
	ErrorCode_ARCHIVE_ALREADY_EXISTS
	ErrorCode_ARCHIVE_EXPORT_FAILED

	ErrorCode_TRANSCRIPTION_FAILED
	ErrorCode_EXTRACTION_FAILED
	ErrorCode_EXTRACTION_PARSE_FAILED

	ErrorCode_INTEGRATION_STORAGE_FAILED
	ErrorCode_INTEGRATION_CACHE_FAILED
	ErrorCode_INTEGRATION_EXTERNAL_API_FAILED

	ErrorCode_DB_CONNECTION_FAILED
	ErrorCode_DB_QUERY_FAILED
	ErrorCode_DB_TRANSACTION_FAILED
)

var errorCodeNames = map[ErrorCode]string{
	ErrorCode_UNKNOWN:           "UNKNOWN",
	ErrorCode_INTERNAL:          "INTERNAL",
	ErrorCode_INVALID_ARGUMENT:  "INVALID_ARGUMENT",
	ErrorCode_NOT_FOUND:         "NOT_FOUND",
	ErrorCode_ALREADY_EXISTS:    "ALREADY_EXISTS",
	ErrorCode_PERMISSION_DENIED: "PERMISSION_DENIED",
	ErrorCode_UNAUTHENTICATED:   "UNAUTHENTICATED",
	ErrorCode_FORBIDDEN:         "FORBIDDEN",
	ErrorCode_INVALID_PAYLOAD:   "INVALID_PAYLOAD",

	ErrorCode_AUTH_INVALID_TOKEN: "AUTH_INVALID_TOKEN",
	ErrorCode_AUTH_TOKEN_EXPIRED: "AUTH_TOKEN_EXPIRED",

	ErrorCode_STANDUP_NOT_FOUND:         "STANDUP_NOT_FOUND",
	ErrorCode_STANDUP_INACTIVE:          "STANDUP_INACTIVE",
	ErrorCode_STANDUP_PROCESSING_LOCKED: "STANDUP_PROCESSING_LOCKED",

	ErrorCode_AUDIO_INVALID:      "AUDIO_INVALID",
	ErrorCode_AUDIO_TOO_LARGE:    "AUDIO_TOO_LARGE",
	ErrorCode_AUDIO_STORE_FAILED: "AUDIO_STORE_FAILED",
	ErrorCode_AUDIO_NOT_FOUND:    "AUDIO_NOT_FOUND",

	ErrorCode_ARCHIVE_NOT_FOUND:      "ARCHIVE_NOT_FOUND",
	ErrorCode_ARCHIVE_ALREADY_EXISTS: "ARCHIVE_ALREADY_EXISTS",
	ErrorCode_ARCHIVE_EXPORT_FAILED:  "ARCHIVE_EXPORT_FAILED",

	ErrorCode_TRANSCRIPTION_FAILED:    "TRANSCRIPTION_FAILED",
	ErrorCode_EXTRACTION_FAILED:       "EXTRACTION_FAILED",
	ErrorCode_EXTRACTION_PARSE_FAILED: "EXTRACTION_PARSE_FAILED",

	ErrorCode_INTEGRATION_STORAGE_FAILED:      "INTEGRATION_STORAGE_FAILED",
	ErrorCode_INTEGRATION_CACHE_FAILED:        "INTEGRATION_CACHE_FAILED",
	ErrorCode_INTEGRATION_EXTERNAL_API_FAILED: "INTEGRATION_EXTERNAL_API_FAILED",

	ErrorCode_DB_CONNECTION_FAILED:  "DB_CONNECTION_FAILED",
	ErrorCode_DB_QUERY_FAILED:       "DB_QUERY_FAILED",
	ErrorCode_DB_TRANSACTION_FAILED: "DB_TRANSACTION_FAILED",
}

// String returns the symbolic name of the code
func (c ErrorCode) String() string {
	if name, ok := errorCodeNames[c]; ok {
		return name
	}
	return "UNKNOWN"
}
