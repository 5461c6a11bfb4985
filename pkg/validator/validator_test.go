package validator

import "testing"

type audioPayload struct {
	MimeType string `validate:"omitempty,audiomime"`
}

func TestAudioMimeRule(t *testing.T) {
	cv := New()

	cases := []struct {
		mimeType string
		wantErr  bool
	}{
		{"audio/webm", false},
		{"audio/webm;codecs=opus", false},
		{"AUDIO/MPEG", false},
		{"", false}, // omitted means browser-default webm
		{"video/mp4", true},
		{"text/plain", true},
	}
	for _, tc := range cases {
		err := cv.Validate(&audioPayload{MimeType: tc.mimeType})
		if tc.wantErr && err == nil {
			t.Errorf("mime %q: expected validation failure", tc.mimeType)
		}
		if !tc.wantErr && err != nil {
			t.Errorf("mime %q: unexpected failure: %v", tc.mimeType, err)
		}
	}
}
