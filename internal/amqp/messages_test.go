package amqp

import "testing"

func TestExpenseRecordedMessageJSON(t *testing.T) {
	msg := NewExpenseRecordedMessage(42, 7, "Alimentação")

	body, err := msg.ToJSON()
	if err != nil {
		t.Fatal(err)
	}

	decoded, err := ExpenseRecordedMessageFromJSON(body)
	if err != nil {
		t.Fatal(err)
	}
	if decoded.TransactionID != 42 || decoded.UserID != 7 || decoded.Category != "Alimentação" {
		t.Fatalf("unexpected message: %+v", decoded)
	}
}

func TestExpenseRecordedMessageFromJSONInvalid(t *testing.T) {
	if _, err := ExpenseRecordedMessageFromJSON([]byte("not json")); err == nil {
		t.Fatal("expected error")
	}
}
