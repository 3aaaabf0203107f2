package amqp

import "testing"

func TestAlertRegenerateMessageRoundTrip(t *testing.T) {
	msg := NewAlertRegenerateMessage(7, 2025, 8)

	body, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}

	decoded, err := AlertRegenerateMessageFromJSON(body)
	if err != nil {
		t.Fatalf("FromJSON: %v", err)
	}
	if decoded.UserID != 7 || decoded.Year != 2025 || decoded.Month != 8 {
		t.Errorf("decoded %+v", decoded)
	}
}

func TestAlertRegenerateMessageValidation(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"not json", "nope"},
		{"missing user", `{"year":2025,"month":8}`},
		{"month out of range", `{"user_id":1,"year":2025,"month":13}`},
		{"zero month", `{"user_id":1,"year":2025,"month":0}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := AlertRegenerateMessageFromJSON([]byte(tc.body)); err == nil {
				t.Errorf("expected error for %q", tc.body)
			}
		})
	}
}
