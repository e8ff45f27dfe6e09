package stripe

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Sentinel errors returned by ConstructEvent. Handlers map both to a 400
// without touching any state.
var (
	ErrSignatureInvalid = errors.New("stripe: webhook signature verification failed")
	ErrMalformedPayload = errors.New("stripe: webhook payload malformed")
)

// signatureTolerance bounds how old a signed webhook may be before it is
// rejected as a possible replay.
const signatureTolerance = 5 * time.Minute

// Kind classifies webhook events into the closed set the application reacts
// to. Every type outside the set decodes to KindIgnored, which the endpoint
// acknowledges with 200 so the gateway stops retrying.
type Kind string

const (
	KindCheckoutCompleted Kind = "checkout_completed"
	KindPaymentFailed     Kind = "payment_failed"
	KindChargeRefunded    Kind = "charge_refunded"
	KindIgnored           Kind = "ignored"
)

// Event is a verified, decoded webhook delivery. Exactly one of Session,
// Intent, Charge is set, matching Kind.
type Event struct {
	ID   string
	Type string // raw gateway event type
	Kind Kind

	Session *SessionData
	Intent  *IntentData
	Charge  *ChargeData
}

// SessionData is the checkout session object carried by
// checkout.session.completed events.
type SessionData struct {
	ID            string            `json:"id"`
	PaymentIntent string            `json:"payment_intent"`
	PaymentStatus string            `json:"payment_status"`
	Metadata      map[string]string `json:"metadata"`
}

// IntentData is the payment intent object carried by
// payment_intent.payment_failed events.
type IntentData struct {
	ID       string            `json:"id"`
	Metadata map[string]string `json:"metadata"`
}

// ChargeData is the charge object carried by charge.refunded events.
type ChargeData struct {
	ID            string            `json:"id"`
	PaymentIntent string            `json:"payment_intent"`
	Metadata      map[string]string `json:"metadata"`
}

type rawEvent struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object json.RawMessage `json:"object"`
	} `json:"data"`
}

// ConstructEvent verifies the Stripe-Signature header against the raw
// payload and decodes the event. The header carries a timestamp and one or
// more HMAC-SHA256 signatures:
//
//	Stripe-Signature: t=1700000000,v1=5257a86...,v1=...
//
// The signed message is "<t>.<payload>". Returns ErrSignatureInvalid for a
// missing, stale, or non-matching signature and ErrMalformedPayload when
// the verified body does not decode.
func ConstructEvent(payload []byte, sigHeader, secret string) (Event, error) {
	ts, sigs, err := parseSignatureHeader(sigHeader)
	if err != nil {
		return Event{}, err
	}

	if d := time.Since(time.Unix(ts, 0)); d > signatureTolerance || d < -signatureTolerance {
		return Event{}, fmt.Errorf("%w: timestamp outside tolerance", ErrSignatureInvalid)
	}

	expected := computeSignature(payload, secret, ts)
	matched := false
	for _, sig := range sigs {
		raw, err := hex.DecodeString(sig)
		if err != nil {
			continue
		}
		if hmac.Equal(raw, expected) {
			matched = true
			break
		}
	}
	if !matched {
		return Event{}, ErrSignatureInvalid
	}

	return decodeEvent(payload)
}

// SignatureHeader computes a valid Stripe-Signature header for payload.
// Exported for tests and the local webhook replay tooling.
func SignatureHeader(payload []byte, secret string, at time.Time) string {
	ts := at.Unix()
	sig := computeSignature(payload, secret, ts)
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(sig))
}

func computeSignature(payload []byte, secret string, ts int64) []byte {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(strconv.FormatInt(ts, 10)))
	mac.Write([]byte("."))
	mac.Write(payload)
	return mac.Sum(nil)
}

func parseSignatureHeader(header string) (ts int64, sigs []string, err error) {
	if header == "" {
		return 0, nil, fmt.Errorf("%w: missing signature header", ErrSignatureInvalid)
	}

	for _, part := range strings.Split(header, ",") {
		key, value, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
			continue
		}
		switch key {
		case "t":
			ts, err = strconv.ParseInt(value, 10, 64)
			if err != nil {
				return 0, nil, fmt.Errorf("%w: bad timestamp", ErrSignatureInvalid)
			}
		case "v1":
			sigs = append(sigs, value)
		}
	}

	if ts == 0 || len(sigs) == 0 {
		return 0, nil, fmt.Errorf("%w: incomplete signature header", ErrSignatureInvalid)
	}
	return ts, sigs, nil
}

func decodeEvent(payload []byte) (Event, error) {
	var raw rawEvent
	if err := json.Unmarshal(payload, &raw); err != nil {
		return Event{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if raw.Type == "" {
		return Event{}, fmt.Errorf("%w: missing event type", ErrMalformedPayload)
	}

	event := Event{ID: raw.ID, Type: raw.Type}

	switch raw.Type {
	case "checkout.session.completed":
		var sess SessionData
		if err := json.Unmarshal(raw.Data.Object, &sess); err != nil || sess.ID == "" {
			return Event{}, fmt.Errorf("%w: bad session object", ErrMalformedPayload)
		}
		event.Kind = KindCheckoutCompleted
		event.Session = &sess

	case "payment_intent.payment_failed":
		var intent IntentData
		if err := json.Unmarshal(raw.Data.Object, &intent); err != nil || intent.ID == "" {
			return Event{}, fmt.Errorf("%w: bad payment intent object", ErrMalformedPayload)
		}
		event.Kind = KindPaymentFailed
		event.Intent = &intent

	case "charge.refunded":
		var charge ChargeData
		if err := json.Unmarshal(raw.Data.Object, &charge); err != nil || charge.ID == "" {
			return Event{}, fmt.Errorf("%w: bad charge object", ErrMalformedPayload)
		}
		event.Kind = KindChargeRefunded
		event.Charge = &charge

	default:
		event.Kind = KindIgnored
	}

	return event, nil
}
