package jobs

import "testing"

func TestSubjectLineFollowsPaymentStatus(t *testing.T) {
	cases := map[string]string{
		"paid":     "payment confirmed",
		"failed":   "payment failed",
		"refunded": "refund issued",
		"pending":  "received",
		"":         "received",
	}
	for status, want := range cases {
		j := OrderConfirmationJob{PaymentStatus: status}
		if got := j.subjectLine(); got != want {
			t.Errorf("subjectLine(%q) = %q, want %q", status, got, want)
		}
	}
}

func TestHandleSkipsMissingRecipient(t *testing.T) {
	j := OrderConfirmationJob{OrderID: 7}
	if err := j.Handle(); err != nil {
		t.Fatalf("Handle without email should be a no-op, got %v", err)
	}
}
