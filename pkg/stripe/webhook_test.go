package stripe_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shashiranjanraj/dabba/pkg/stripe"
)

const secret = "whsec_test"

func validPayload() []byte {
	return []byte(`{
		"id": "evt_1",
		"type": "checkout.session.completed",
		"data": {"object": {
			"id": "cs_test_1",
			"payment_intent": "pi_1",
			"payment_status": "paid",
			"metadata": {"order_id": "42"}
		}}
	}`)
}

func TestConstructEventValidSignature(t *testing.T) {
	payload := validPayload()
	header := stripe.SignatureHeader(payload, secret, time.Now())

	event, err := stripe.ConstructEvent(payload, header, secret)
	if err != nil {
		t.Fatalf("ConstructEvent: %v", err)
	}

	if event.Kind != stripe.KindCheckoutCompleted {
		t.Fatalf("kind = %q, want %q", event.Kind, stripe.KindCheckoutCompleted)
	}
	if event.Session == nil {
		t.Fatal("session object missing")
	}
	if event.Session.ID != "cs_test_1" || event.Session.PaymentIntent != "pi_1" {
		t.Fatalf("session decoded wrong: %+v", event.Session)
	}
	if event.Session.Metadata["order_id"] != "42" {
		t.Fatalf("metadata lost: %+v", event.Session.Metadata)
	}
}

func TestConstructEventWrongSecret(t *testing.T) {
	payload := validPayload()
	header := stripe.SignatureHeader(payload, "whsec_other", time.Now())

	_, err := stripe.ConstructEvent(payload, header, secret)
	if !errors.Is(err, stripe.ErrSignatureInvalid) {
		t.Fatalf("err = %v, want ErrSignatureInvalid", err)
	}
}

func TestConstructEventTamperedPayload(t *testing.T) {
	payload := validPayload()
	header := stripe.SignatureHeader(payload, secret, time.Now())

	tampered := append([]byte{}, payload...)
	tampered[len(tampered)-2] = ' '

	_, err := stripe.ConstructEvent(tampered, header, secret)
	if !errors.Is(err, stripe.ErrSignatureInvalid) {
		t.Fatalf("err = %v, want ErrSignatureInvalid", err)
	}
}

func TestConstructEventStaleTimestamp(t *testing.T) {
	payload := validPayload()
	header := stripe.SignatureHeader(payload, secret, time.Now().Add(-10*time.Minute))

	_, err := stripe.ConstructEvent(payload, header, secret)
	if !errors.Is(err, stripe.ErrSignatureInvalid) {
		t.Fatalf("err = %v, want ErrSignatureInvalid", err)
	}
}

func TestConstructEventMissingHeader(t *testing.T) {
	_, err := stripe.ConstructEvent(validPayload(), "", secret)
	if !errors.Is(err, stripe.ErrSignatureInvalid) {
		t.Fatalf("err = %v, want ErrSignatureInvalid", err)
	}
}

func TestConstructEventMalformedBody(t *testing.T) {
	payload := []byte(`{"id": "evt_1"`)
	header := stripe.SignatureHeader(payload, secret, time.Now())

	_, err := stripe.ConstructEvent(payload, header, secret)
	if !errors.Is(err, stripe.ErrMalformedPayload) {
		t.Fatalf("err = %v, want ErrMalformedPayload", err)
	}
}

func TestConstructEventBadObject(t *testing.T) {
	payload := []byte(`{"id":"evt_1","type":"checkout.session.completed","data":{"object":{"payment_status":"paid"}}}`)
	header := stripe.SignatureHeader(payload, secret, time.Now())

	_, err := stripe.ConstructEvent(payload, header, secret)
	if !errors.Is(err, stripe.ErrMalformedPayload) {
		t.Fatalf("err = %v, want ErrMalformedPayload", err)
	}
}

func TestConstructEventUnknownTypeIgnored(t *testing.T) {
	payload := []byte(`{"id":"evt_2","type":"customer.created","data":{"object":{"id":"cus_1"}}}`)
	header := stripe.SignatureHeader(payload, secret, time.Now())

	event, err := stripe.ConstructEvent(payload, header, secret)
	if err != nil {
		t.Fatalf("ConstructEvent: %v", err)
	}
	if event.Kind != stripe.KindIgnored {
		t.Fatalf("kind = %q, want %q", event.Kind, stripe.KindIgnored)
	}
}

func TestConstructEventPaymentFailed(t *testing.T) {
	payload := []byte(`{"id":"evt_3","type":"payment_intent.payment_failed","data":{"object":{"id":"pi_9","metadata":{"order_id":"7"}}}}`)
	header := stripe.SignatureHeader(payload, secret, time.Now())

	event, err := stripe.ConstructEvent(payload, header, secret)
	if err != nil {
		t.Fatalf("ConstructEvent: %v", err)
	}
	if event.Kind != stripe.KindPaymentFailed || event.Intent == nil || event.Intent.ID != "pi_9" {
		t.Fatalf("decoded wrong: %+v", event)
	}
}

func TestConstructEventChargeRefunded(t *testing.T) {
	payload := []byte(`{"id":"evt_4","type":"charge.refunded","data":{"object":{"id":"ch_1","payment_intent":"pi_1"}}}`)
	header := stripe.SignatureHeader(payload, secret, time.Now())

	event, err := stripe.ConstructEvent(payload, header, secret)
	if err != nil {
		t.Fatalf("ConstructEvent: %v", err)
	}
	if event.Kind != stripe.KindChargeRefunded || event.Charge == nil || event.Charge.PaymentIntent != "pi_1" {
		t.Fatalf("decoded wrong: %+v", event)
	}
}
