package amqp

import (
	"testing"
)

func TestExpenseEventMessage_Validate(t *testing.T) {
	tests := []struct {
		name    string
		msg     *ExpenseEventMessage
		wantErr bool
	}{
		{
			name: "valid created event",
			msg:  NewExpenseEventMessage(1, "a@x.com", EventCreated),
		},
		{
			name: "valid deleted event",
			msg:  NewExpenseEventMessage(7, "a@x.com", EventDeleted),
		},
		{
			name:    "zero id",
			msg:     NewExpenseEventMessage(0, "a@x.com", EventCreated),
			wantErr: true,
		},
		{
			name:    "missing owner",
			msg:     NewExpenseEventMessage(1, "", EventCreated),
			wantErr: true,
		},
		{
			name:    "unknown kind",
			msg:     NewExpenseEventMessage(1, "a@x.com", "archived"),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.msg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestExpenseEventMessage_JSONRoundTrip(t *testing.T) {
	msg := NewExpenseEventMessage(42, "a@x.com", EventUpdated)

	data, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}

	got, err := ExpenseEventMessageFromJSON(data)
	if err != nil {
		t.Fatalf("FromJSON() error = %v", err)
	}

	if got.ID != 42 || got.Owner != "a@x.com" || got.Kind != EventUpdated {
		t.Errorf("round trip = %+v, want original fields", got)
	}
}

func TestExpenseEventMessageFromJSON_Garbage(t *testing.T) {
	if _, err := ExpenseEventMessageFromJSON([]byte("not json")); err == nil {
		t.Error("expected error for malformed JSON")
	}
}
